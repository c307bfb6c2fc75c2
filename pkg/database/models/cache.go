package models

import "time"

// Database model for saving the cache keys.
// Used as fallback in case the Redis is down or not configured.
type CacheBackup struct {
	CacheKey   string `gorm:"primaryKey;autoIncrement:false"`
	CacheValue string `gorm:"type:jsonb"`
	UpdatedAt  time.Time
}
