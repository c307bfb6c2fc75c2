package repositories

import (
	"context"
	"errors"
	"fmt"

	leaderboardservice "loltools/fetcher/services/leaderboard"
	"loltools/pkg/database/models"
	"loltools/pkg/regions"
	tiervalues "loltools/pkg/riotvalues/tier"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSnapshotNotFound is returned when no snapshot matches.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// LeaderboardRepository is the public interface for storing the aggregated leaderboards.
type LeaderboardRepository interface {
	SaveSnapshot(ctx context.Context, snapshot *models.LeaderboardSnapshot) error
	GetLatestSnapshot(ctx context.Context, queue string, tier string, rank string, region regions.SubRegion) (*models.LeaderboardSnapshot, error)
}

// leaderboardRepository is the repository instance.
type leaderboardRepository struct {
	db *gorm.DB
}

// NewLeaderboardRepository creates a new repository and return it.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

// SaveSnapshot creates the snapshot and all of its rows in a single transaction.
func (lr *leaderboardRepository) SaveSnapshot(ctx context.Context, snapshot *models.LeaderboardSnapshot) error {
	return lr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := snapshot.Rows
		snapshot.Rows = nil
		defer func() { snapshot.Rows = rows }()

		if err := tx.Create(snapshot).Error; err != nil {
			return fmt.Errorf("couldn't create the snapshot: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		for i := range rows {
			rows[i].SnapshotID = snapshot.ID
		}

		if err := tx.CreateInBatches(&rows, 1000).Error; err != nil {
			return fmt.Errorf("couldn't create the snapshot rows: %w", err)
		}
		return nil
	})
}

// GetLatestSnapshot returns the newest snapshot of the ladder, with its rows in order.
func (lr *leaderboardRepository) GetLatestSnapshot(
	ctx context.Context,
	queue string,
	tier string,
	rank string,
	region regions.SubRegion,
) (*models.LeaderboardSnapshot, error) {
	var snapshot models.LeaderboardSnapshot
	err := lr.db.WithContext(ctx).
		Preload("Rows", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("queue = ? AND tier = ? AND rank = ? AND region = ?", queue, tier, rank, region).
		Order("created_at DESC").
		Take(&snapshot).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SnapshotFromResult converts a aggregation result into a snapshot with the given run id.
func SnapshotFromResult(runID uuid.UUID, result *leaderboardservice.Result) *models.LeaderboardSnapshot {
	snapshot := &models.LeaderboardSnapshot{
		ID:           runID,
		Queue:        result.Queue,
		Tier:         string(result.Tier),
		Rank:         string(result.Division),
		Region:       result.Region,
		TopN:         result.N,
		PagesFetched: result.PagesFetched,
		Partial:      result.Partial,
		Rows:         make([]models.LeaderboardRow, 0, len(result.Rows)),
	}

	for _, row := range result.Rows {
		snapshot.Rows = append(snapshot.Rows, models.LeaderboardRow{
			SnapshotID:   runID,
			Position:     row.Rank,
			PlayerID:     row.PlayerID,
			SummonerName: row.SummonerName,
			Tier:         row.Tier,
			Rank:         row.Division,
			NumericScore: tiervalues.CalculateRank(row.Tier, row.Division, row.LeaguePoints),
			LeaguePoints: row.LeaguePoints,
			Wins:         row.Wins,
			Losses:       row.Losses,
			WinRate:      row.WinRate,
			Veteran:      row.Veteran,
			Inactive:     row.Inactive,
			FreshBlood:   row.FreshBlood,
			HotStreak:    row.HotStreak,
		})
	}

	return snapshot
}
