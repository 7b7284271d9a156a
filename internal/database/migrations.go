package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes that AutoMigrate does not
// cover. Safe to run repeatedly.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task lookups by group, assignee, and creation window
		{"tasks", "idx_tasks_group_user", "group_id, user_id"},
		{"tasks", "idx_tasks_user_status", "user_id, status"},
		{"tasks", "idx_tasks_created_at", "created_at"},

		// Membership lookups resolve levels on every mutation
		{"group_members", "idx_group_members_user_id", "user_id"},

		// Tree traversal fans out from (group, parent)
		{"sub_users", "idx_sub_users_group_parent", "group_id, parent_id"},

		// Invite redemption is a point lookup already covered by the unique
		// token index; expiry sweeps would scan by status
		{"invites", "idx_invites_status", "status"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?
		`, idx.table, idx.name).Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
