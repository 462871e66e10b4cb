package store

import (
	"context"
	"time"
)

// Run is one pipeline invocation: what was parsed and, when submitted, the
// CRM object IDs that came back.
type Run struct {
	ID          int64
	Source      string // pdf / scrape / email
	JobTitle    string
	CompanyName string
	CompanyID   string // HubSpot company object ID
	DealID      string // HubSpot deal object ID
	Submitted   bool
	CreatedAt   time.Time
}

// RecordRun inserts a run row and returns its ID.
func (d *DB) RecordRun(ctx context.Context, r Run) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := d.Pool.ExecContext(ctx, `
INSERT INTO runs(source, job_title, company_name, hubspot_company_id, hubspot_deal_id, submitted, created_at)
VALUES(?,?,?,?,?,?,?);`,
		r.Source, r.JobTitle, r.CompanyName, r.CompanyID, r.DealID,
		boolToInt(r.Submitted), r.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentRuns lists the newest runs, most recent first.
func (d *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, source, job_title, company_name, hubspot_company_id, hubspot_deal_id, submitted, created_at
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var submitted int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Source, &r.JobTitle, &r.CompanyName,
			&r.CompanyID, &r.DealID, &submitted, &createdAt); err != nil {
			return nil, err
		}
		r.Submitted = submitted != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
