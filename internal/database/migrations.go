package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds composite indexes that AutoMigrate cannot express.
// PostgreSQL only: existence is checked through pg_indexes.
func AddIndexes(db *gorm.DB) ([]string, error) {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Calendar and history queries filter by owner then due date
		{"tasks", "idx_tasks_owner_due_date", "owner_id, due_date"},
		{"tasks", "idx_tasks_owner_completed", "owner_id, completed"},

		// Leaderboard ordering
		{"group_members", "idx_group_members_group_position", "group_id, position"},
	}

	var created []string
	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error
		if err != nil {
			return created, fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return created, fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		created = append(created, idx.name)
	}

	return created, nil
}

// MigrateDatabase runs the driver-specific steps that follow AutoMigrate.
func MigrateDatabase(db *gorm.DB) ([]string, error) {
	if db.Dialector.Name() != "postgres" {
		return nil, nil
	}

	created, err := AddIndexes(db)
	if err != nil {
		return created, fmt.Errorf("failed to add indexes: %w", err)
	}

	return created, nil
}
