package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"store-monitor/internal/models"
)

// Samples retrieves a store's observations ordered by timestamp. The
// secondary sort on the rowid keeps duplicate timestamps in insertion
// order (stable, no dedup).
func (db *DB) Samples(ctx context.Context, storeID string) ([]models.StatusSample, error) {
	query := `
        SELECT timestamp_utc, status
        FROM store_status
        WHERE store_id = ?
        ORDER BY timestamp_utc, id
    `

	rows, err := db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.StatusSample
	for rows.Next() {
		s := models.StatusSample{StoreID: storeID}
		var status string
		if err := rows.Scan(&s.Timestamp, &status); err != nil {
			return nil, err
		}
		s.Timestamp = s.Timestamp.UTC()
		s.Status = models.Status(status)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// Schedule retrieves a store's weekly business hours. When a weekday
// appears more than once, the first ingested row wins, matching the
// lookup the report consumers were calibrated against.
func (db *DB) Schedule(ctx context.Context, storeID string) (models.WeeklySchedule, error) {
	query := `
        SELECT day_of_week, start_time_local, end_time_local
        FROM store_hours
        WHERE store_id = ?
        ORDER BY id
    `

	rows, err := db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedule models.WeeklySchedule
	for rows.Next() {
		var day int
		var hours models.DayHours
		if err := rows.Scan(&day, &hours.Start, &hours.End); err != nil {
			return nil, err
		}
		if schedule == nil {
			schedule = make(models.WeeklySchedule)
		}
		if _, exists := schedule[day]; !exists {
			schedule[day] = hours
		}
	}
	return schedule, rows.Err()
}

// Timezone retrieves a store's IANA zone name, or "" when unassigned.
func (db *DB) Timezone(ctx context.Context, storeID string) (string, error) {
	query := `SELECT timezone_str FROM store_timezones WHERE store_id = ? ORDER BY id LIMIT 1`

	var tz string
	err := db.QueryRowContext(ctx, query, storeID).Scan(&tz)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tz, nil
}

// StoreIDs returns every store with at least one observation.
func (db *DB) StoreIDs(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT store_id FROM store_status ORDER BY store_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stores returns per-store dataset summaries.
func (db *DB) Stores(ctx context.Context) ([]models.StoreInfo, error) {
	query := `
        SELECT store_id, COUNT(*), MAX(timestamp_utc)
        FROM store_status
        GROUP BY store_id
        ORDER BY store_id
    `

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []models.StoreInfo
	for rows.Next() {
		var info models.StoreInfo
		if err := rows.Scan(&info.StoreID, &info.SampleCount, &info.LastSeen); err != nil {
			return nil, err
		}
		info.LastSeen = info.LastSeen.UTC()
		stores = append(stores, info)
	}
	return stores, rows.Err()
}

// LatestSampleTime returns the maximum observed timestamp across the
// whole dataset, the reference instant every report is anchored to.
func (db *DB) LatestSampleTime(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime
	err := db.QueryRowContext(ctx, `SELECT MAX(timestamp_utc) FROM store_status`).Scan(&latest)
	if err != nil {
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, fmt.Errorf("no status samples loaded")
	}
	return latest.Time.UTC(), nil
}

// CreateReport inserts a new report job row.
func (db *DB) CreateReport(ctx context.Context, r models.Report) error {
	query := `INSERT INTO reports (id, status, created_at) VALUES (?, ?, ?)`
	_, err := db.ExecContext(ctx, query, r.ID, string(r.Status), r.CreatedAt)
	return err
}

// GetReport fetches a report job by id; nil when unknown.
func (db *DB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	query := `SELECT id, status, csv_path, error, created_at FROM reports WHERE id = ?`

	var (
		r       models.Report
		csvPath sql.NullString
		errMsg  sql.NullString
		status  string
	)
	err := db.QueryRowContext(ctx, query, id).Scan(&r.ID, &status, &csvPath, &errMsg, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Status = models.ReportStatus(status)
	r.CSVPath = csvPath.String
	r.Error = errMsg.String
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

// ListReports returns the most recent report jobs.
func (db *DB) ListReports(ctx context.Context, limit int) ([]models.Report, error) {
	query := `
        SELECT id, status, csv_path, error, created_at
        FROM reports
        ORDER BY created_at DESC, id
        LIMIT ?
    `

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var (
			r       models.Report
			csvPath sql.NullString
			errMsg  sql.NullString
			status  string
		)
		if err := rows.Scan(&r.ID, &status, &csvPath, &errMsg, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Status = models.ReportStatus(status)
		r.CSVPath = csvPath.String
		r.Error = errMsg.String
		r.CreatedAt = r.CreatedAt.UTC()
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// FinishReport applies the single Running -> Complete/Failed transition
// for a job. The guard on the current status serializes the transition:
// it returns false when the job was already finished (or never existed)
// and no row was changed.
func (db *DB) FinishReport(ctx context.Context, id string, status models.ReportStatus, csvPath, errMsg string) (bool, error) {
	query := `
        UPDATE reports
        SET status = ?, csv_path = ?, error = ?
        WHERE id = ? AND status = ?
    `

	res, err := db.ExecContext(ctx, query, string(status), csvPath, errMsg, id, string(models.ReportRunning))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReplaceDataset atomically swaps in a freshly ingested snapshot. The
// previous samples, hours and timezone rows are dropped first, matching
// the load-once lifecycle of a dataset.
func (db *DB) ReplaceDataset(ctx context.Context, samples []models.StatusSample, hours []models.HoursRow, timezones []models.TimezoneRow) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"store_status", "store_hours", "store_timezones"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	sampleStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO store_status (store_id, timestamp_utc, status) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer sampleStmt.Close()
	for _, s := range samples {
		if _, err := sampleStmt.ExecContext(ctx, s.StoreID, s.Timestamp.UTC(), string(s.Status)); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}

	hoursStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO store_hours (store_id, day_of_week, start_time_local, end_time_local) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer hoursStmt.Close()
	for _, h := range hours {
		if _, err := hoursStmt.ExecContext(ctx, h.StoreID, h.DayOfWeek, h.Hours.Start, h.Hours.End); err != nil {
			return fmt.Errorf("insert hours: %w", err)
		}
	}

	tzStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO store_timezones (store_id, timezone_str) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer tzStmt.Close()
	for _, z := range timezones {
		if _, err := tzStmt.ExecContext(ctx, z.StoreID, z.Timezone); err != nil {
			return fmt.Errorf("insert timezone: %w", err)
		}
	}

	return tx.Commit()
}
