package repositories

import (
	"context"
	"database/sql"
	"time"

	"vectora/internal/models"
)

// StatsRepository aggregates one owner's tasks. Overview counts top-level tasks only.
type StatsRepository interface {
	Overview(ctx context.Context, userID int64, now time.Time) (*models.StatsOverview, error)
	Daily(ctx context.Context, userID int64, from, to time.Time) ([]models.DailyStat, error)
}

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Overview(ctx context.Context, userID int64, now time.Time) (*models.StatsOverview, error) {
	const totals = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status),
       COUNT(*) FILTER (WHERE (date_time AT TIME ZONE 'UTC')::date = ($2::timestamptz AT TIME ZONE 'UTC')::date),
       COUNT(*) FILTER (WHERE NOT status AND date_time < $2)
FROM tasks
WHERE user_id = $1 AND parent_task_id IS NULL`

	s := &models.StatsOverview{
		ByPriority: map[string]int{},
		ByCategory: map[string]int{},
	}
	if err := r.db.QueryRowContext(ctx, totals, userID, now).
		Scan(&s.Total, &s.Completed, &s.Today, &s.Overdue); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, `
SELECT priority, COUNT(*) FROM tasks
WHERE user_id = $1 AND parent_task_id IS NULL
GROUP BY priority`, userID, s.ByPriority); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, `
SELECT category, COUNT(*) FROM tasks
WHERE user_id = $1 AND parent_task_id IS NULL AND category IS NOT NULL
GROUP BY category`, userID, s.ByCategory); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *statsRepository) groupCount(ctx context.Context, q string, userID int64, into map[string]int) error {
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

// Daily returns one row per UTC calendar day in [from, to], oldest first. A task counts as
// completed on the day it was last updated while done.
func (r *statsRepository) Daily(ctx context.Context, userID int64, from, to time.Time) ([]models.DailyStat, error) {
	const q = `
SELECT to_char(d, 'YYYY-MM-DD'),
       (SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND status AND (updated_at AT TIME ZONE 'UTC')::date = d::date),
       (SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND (created_at AT TIME ZONE 'UTC')::date = d::date)
FROM generate_series(($2::timestamptz AT TIME ZONE 'UTC')::date, ($3::timestamptz AT TIME ZONE 'UTC')::date, interval '1 day') AS d
ORDER BY d`
	rows, err := r.db.QueryContext(ctx, q, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DailyStat{}
	for rows.Next() {
		var ds models.DailyStat
		if err := rows.Scan(&ds.Date, &ds.Completed, &ds.Created); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}
