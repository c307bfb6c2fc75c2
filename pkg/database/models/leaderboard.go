package models

import (
	"time"

	"loltools/pkg/regions"

	"github.com/google/uuid"
)

// LeaderboardSnapshot is a single aggregation run with the rows it produced.
type LeaderboardSnapshot struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Queue string    `gorm:"type:queue_type;index:idx_snapshot_queue_rank_time,priority:1"`
	Tier  string    `gorm:"type:tier_type;index:idx_snapshot_queue_rank_time,priority:2"`
	Rank  string    `gorm:"type:rank_type;index:idx_snapshot_queue_rank_time,priority:3"`

	Region       regions.SubRegion `gorm:"type:varchar(5)"`
	TopN         int
	PagesFetched int
	Partial      bool
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_snapshot_queue_rank_time,priority:4"`

	Rows []LeaderboardRow `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
}

// LeaderboardRow contains a ranked entry of a snapshot.
type LeaderboardRow struct {
	ID uint `gorm:"primaryKey"`

	// Reference to the snapshot that has the row.
	SnapshotID uuid.UUID `gorm:"type:uuid;index:idx_row_snapshot_position,priority:1"`
	Position   int       `gorm:"index:idx_row_snapshot_position,priority:2"`

	PlayerID     string `gorm:"type:varchar(100)"`
	SummonerName string
	Tier         string `gorm:"type:tier_type"`
	Rank         string `gorm:"type:rank_type"`
	NumericScore int
	LeaguePoints int
	Wins         int
	Losses       int
	WinRate      float64
	Veteran      bool
	Inactive     bool
	FreshBlood   bool
	HotStreak    bool
}
