package database

import (
	"context"
	"fmt"
	"time"
)

// VerdictRepository keeps the latest verdict per post
type VerdictRepository struct {
	db *DB
}

func NewVerdictRepository(db *DB) *VerdictRepository {
	return &VerdictRepository{db: db}
}

func (r *VerdictRepository) SaveVerdict(ctx context.Context, v Verdict) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verdicts (post_id, author, title, link, created, status, filter, reason, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (post_id) DO UPDATE SET
			status = excluded.status,
			filter = excluded.filter,
			reason = excluded.reason,
			classified_at = excluded.classified_at
	`, v.PostID, v.Author, v.Title, nullString(v.Link), v.Created.Unix(),
		v.Status, nullString(v.Filter), nullString(v.Reason), v.ClassifiedAt.Unix())

	if err != nil {
		return fmt.Errorf("failed to save verdict: %w", err)
	}

	return nil
}

// ListVerdicts returns the most recently classified verdicts, optionally
// restricted to one status
func (r *VerdictRepository) ListVerdicts(ctx context.Context, status string, limit int) ([]Verdict, error) {
	query := `
		SELECT post_id, author, title, COALESCE(link, ''), created, status,
		       COALESCE(filter, ''), COALESCE(reason, ''), classified_at
		FROM verdicts`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY classified_at DESC, post_id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []Verdict
	for rows.Next() {
		var (
			v                     Verdict
			created, classifiedAt int64
		)
		err := rows.Scan(&v.PostID, &v.Author, &v.Title, &v.Link, &created,
			&v.Status, &v.Filter, &v.Reason, &classifiedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verdict row: %w", err)
		}
		v.Created = time.Unix(created, 0).UTC()
		v.ClassifiedAt = time.Unix(classifiedAt, 0).UTC()
		verdicts = append(verdicts, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating verdict rows: %w", err)
	}

	return verdicts, nil
}

func (r *VerdictRepository) GetVerdictStats(ctx context.Context) (VerdictStats, error) {
	var stats VerdictStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'ham' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'spam' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'unknown' THEN 1 ELSE 0 END), 0)
		FROM verdicts
	`).Scan(&stats.Ham, &stats.Spam, &stats.Unknown)

	if err != nil {
		return VerdictStats{}, fmt.Errorf("failed to get verdict stats: %w", err)
	}

	return stats, nil
}
