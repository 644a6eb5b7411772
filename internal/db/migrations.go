package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: index catalog sort columns so point-value ordering
	// doesn't scan the whole table.
	`CREATE INDEX IF NOT EXISTS idx_items_status_points
	     ON items(status, point_value)`,
	// Migration 2: index tag lookups for the search filter's
	// exact-membership sub-condition.
	`CREATE INDEX IF NOT EXISTS idx_item_tags_tag
	     ON item_tags(tag)`,
}

// Migrate ensures the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
