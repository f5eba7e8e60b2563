package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"store-monitor/internal/models"
)

// ArchiveOldReports zstd-compresses the CSV artifacts of completed
// reports older than the cutoff and repoints the job rows at the
// compressed files. Returns how many reports were archived.
func (db *DB) ArchiveOldReports(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	query := `
        SELECT id, csv_path
        FROM reports
        WHERE status = ? AND created_at < ? AND csv_path NOT LIKE '%.zst'
    `

	rows, err := db.QueryContext(ctx, query, string(models.ReportComplete), cutoff)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type pending struct{ id, path string }
	var work []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.path); err != nil {
			return 0, err
		}
		if p.path != "" {
			work = append(work, p)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	archived := 0
	for _, p := range work {
		compressed, err := compressFile(p.path)
		if err != nil {
			return archived, fmt.Errorf("archive report %s: %w", p.id, err)
		}
		if _, err := db.ExecContext(ctx,
			`UPDATE reports SET csv_path = ? WHERE id = ?`, compressed, p.id); err != nil {
			return archived, err
		}
		os.Remove(p.path)
		archived++
	}
	return archived, nil
}

// PruneOldReports deletes report rows past the retention age together
// with their artifact directories. Returns how many jobs were removed.
func (db *DB) PruneOldReports(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	rows, err := db.QueryContext(ctx,
		`SELECT id, csv_path FROM reports WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids []string
	var dirs []string
	for rows.Next() {
		var id string
		var path sql.NullString
		if err := rows.Scan(&id, &path); err != nil {
			return 0, err
		}
		ids = append(ids, id)
		if path.String != "" {
			dirs = append(dirs, filepath.Dir(path.String))
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		if _, err := db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id); err != nil {
			return 0, err
		}
	}
	for _, dir := range dirs {
		// Artifact directories are named report_<id>; never follow a
		// path that does not look like one.
		if strings.HasPrefix(filepath.Base(dir), "report_") {
			os.RemoveAll(dir)
		}
	}
	return len(ids), nil
}

// compressFile writes a zstd-compressed copy next to the source file
// and returns the new path.
func compressFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	outPath := path + ".zst"
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}

	enc, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		out.Close()
		os.Remove(outPath)
		return "", err
	}
	if err := enc.Close(); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return "", err
	}
	return outPath, nil
}
