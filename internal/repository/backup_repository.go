package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Tables included in an admin backup snapshot, in dump order.
var backupTables = []string{
	"guardians",
	"age_categories",
	"belts",
	"students",
	"payments",
	"evaluations",
	"evaluation_students",
	"class_schedules",
	"billing_settings",
}

// BackupRepository reads raw table snapshots for the admin backup export.
type BackupRepository struct {
	db *sqlx.DB
}

// NewBackupRepository constructs a BackupRepository.
func NewBackupRepository(db *sqlx.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

// Tables returns the snapshot table list.
func (r *BackupRepository) Tables() []string {
	return backupTables
}

// Snapshot reads every row of a backup table as string-keyed records. Only
// names from the fixed table list are accepted, so no identifier ever comes
// from user input.
func (r *BackupRepository) Snapshot(ctx context.Context, table string) ([]string, []map[string]string, error) {
	allowed := false
	for _, t := range backupTables {
		if t == table {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, nil, fmt.Errorf("table %s is not part of the backup set", table)
	}

	rows, err := r.db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot %s: %w", table, err)
	}
	defer rows.Close() //nolint:errcheck

	headers, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot columns %s: %w", table, err)
	}

	records := make([]map[string]string, 0)
	for rows.Next() {
		raw := map[string]interface{}{}
		if err := rows.MapScan(raw); err != nil {
			return nil, nil, fmt.Errorf("snapshot scan %s: %w", table, err)
		}
		record := make(map[string]string, len(raw))
		for key, value := range raw {
			switch v := value.(type) {
			case nil:
				record[key] = ""
			case []byte:
				record[key] = string(v)
			default:
				record[key] = fmt.Sprintf("%v", v)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("snapshot rows %s: %w", table, err)
	}
	return headers, records, nil
}
