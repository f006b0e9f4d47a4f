package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// ExportRecord is one saved export.
type ExportRecord struct {
	ID         int64
	RecordID   string // pipeline record the export was rendered from
	Profile    string // optional
	SourcePath string
	OutputPath string
	Format     string
	Selection  string // e.g. "open=all closed=none"
	GroupCount int
	TabCount   int
	SizeBytes  int64
	CreatedAt  time.Time
}

// RecordExport inserts an export into the history and returns its ID.
// A zero CreatedAt is stored as now.
func RecordExport(db *sql.DB, e ExportRecord) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	var profile sql.NullString
	if e.Profile != "" {
		profile = sql.NullString{String: e.Profile, Valid: true}
	}
	res, err := db.Exec(`INSERT INTO exports
		(record_id, profile, source_path, output_path, format, selection, group_count, tab_count, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RecordID, profile, e.SourcePath, e.OutputPath, e.Format, e.Selection,
		e.GroupCount, e.TabCount, e.SizeBytes, e.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert export: %w", err)
	}
	return res.LastInsertId()
}

const exportColumns = `id, record_id, profile, source_path, output_path, format, selection,
	group_count, tab_count, size_bytes, created_at`

// ListExports returns the most recent exports first. limit <= 0 means all.
func ListExports(db *sql.DB, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(
		"SELECT "+exportColumns+" FROM exports ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	return scanExports(rows)
}

// ListExportsBySource returns the exports made from one session file, most
// recent first.
func ListExportsBySource(db *sql.DB, sourcePath string) ([]ExportRecord, error) {
	rows, err := db.Query(
		"SELECT "+exportColumns+" FROM exports WHERE source_path = ? ORDER BY created_at DESC, id DESC",
		sourcePath,
	)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	return scanExports(rows)
}

// DeleteExport removes one history entry. Returns an error if it does not
// exist.
func DeleteExport(db *sql.DB, id int64) error {
	res, err := db.Exec("DELETE FROM exports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete export: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("export %d not found", id)
	}
	return nil
}

func scanExports(rows *sql.Rows) ([]ExportRecord, error) {
	defer rows.Close()

	var result []ExportRecord
	for rows.Next() {
		var e ExportRecord
		var profile sql.NullString
		if err := rows.Scan(&e.ID, &e.RecordID, &profile, &e.SourcePath, &e.OutputPath, &e.Format,
			&e.Selection, &e.GroupCount, &e.TabCount, &e.SizeBytes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		if profile.Valid {
			e.Profile = profile.String
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return result, nil
}
