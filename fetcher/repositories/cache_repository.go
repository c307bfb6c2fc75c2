package repositories

import (
	"context"
	"errors"

	"loltools/pkg/database/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Public Interface.
type CacheRepository interface {
	GetKey(ctx context.Context, key string) (string, bool, error)
	SetKey(ctx context.Context, key string, value string) error
}

// Cache repository structure.
type cacheRepository struct {
	db *gorm.DB
}

// Create a cache repository.
func NewCacheRepository(db *gorm.DB) CacheRepository {
	return &cacheRepository{db: db}
}

// GetKey returns the stored value, false when the key was never set.
func (cr *cacheRepository) GetKey(ctx context.Context, key string) (string, bool, error) {
	var entry models.CacheBackup
	err := cr.db.WithContext(ctx).Where("cache_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.CacheValue, true, nil
}

// SetKey sets the given key value.
// Should be used as a Redis fallback.
func (cr *cacheRepository) SetKey(ctx context.Context, key string, value string) error {
	cacheEntry := &models.CacheBackup{
		CacheKey:   key,
		CacheValue: value,
	}

	// Upsert the cache key.
	return cr.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"cache_value", "updated_at"}),
	}).Create(cacheEntry).Error
}
