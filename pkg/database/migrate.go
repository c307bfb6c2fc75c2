package database

import (
	"fmt"
	"log"

	"loltools/pkg/database/models"

	"gorm.io/gorm"
)

const migrationsLockKey = "loltools_migrations_lock"

// Migrate creates the enums, the tables and the indexes.
// An advisory lock keeps two tools from migrating at the same time.
func Migrate(db *gorm.DB) error {
	// The lock is held by a session, so everything runs on a single connection.
	return db.Connection(func(conn *gorm.DB) error {
		var lockAcquired bool
		if err := conn.Raw("SELECT pg_try_advisory_lock(hashtext(?))", migrationsLockKey).Scan(&lockAcquired).Error; err != nil {
			return fmt.Errorf("could not acquire the migrations lock: %w", err)
		}

		if !lockAcquired {
			log.Println("Another process is already running migrations, skipping...")
			return nil
		}

		defer func() {
			var lockReleased bool
			if err := conn.Raw("SELECT pg_advisory_unlock(hashtext(?))", migrationsLockKey).Scan(&lockReleased).Error; err != nil || !lockReleased {
				log.Printf("Could not release the migrations lock: %v", err)
			}
		}()

		if err := CreateEnums(conn); err != nil {
			return fmt.Errorf("could not create the enums: %w", err)
		}

		if err := conn.AutoMigrate(
			&models.CacheBackup{},
			&models.LeaderboardSnapshot{},
			&models.LeaderboardRow{},
		); err != nil {
			return fmt.Errorf("could not run migrations: %w", err)
		}

		if err := CreateCustomIndexes(conn); err != nil {
			return fmt.Errorf("could not create the indexes: %w", err)
		}

		return nil
	})
}
