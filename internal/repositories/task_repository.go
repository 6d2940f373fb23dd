package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"vectora/internal/models"
)

// TaskRepository is owner-scoped: every read and write takes the owner's id, and
// a task that belongs to someone else looks exactly like a missing one.
type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, userID, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, id int64) error

	ListDueForReminder(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)
	SetReminderFired(ctx context.Context, id int64, at time.Time) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, user_id, parent_task_id, title, description, date_time, priority,
       status, position, category, tags, reminder_enabled, reminder_minutes_before,
       last_reminded_at, created_at, updated_at`

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t           models.Task
		parentID    sql.NullInt64
		dateTime    sql.NullTime
		category    sql.NullString
		tags        pq.StringArray
		reminded    sql.NullTime
		priority    string
		description sql.NullString
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &parentID, &t.Title, &description, &dateTime, &priority,
		&t.Status, &t.Position, &category, &tags, &t.ReminderEnabled, &t.ReminderMinutesBefore,
		&reminded, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Priority = models.TaskPriority(priority)
	t.Description = description.String
	t.Tags = []string(tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if parentID.Valid {
		v := parentID.Int64
		t.ParentTaskID = &v
	}
	if dateTime.Valid {
		v := dateTime.Time
		t.DateTime = &v
	}
	if category.Valid {
		v := category.String
		t.Category = &v
	}
	if reminded.Valid {
		v := reminded.Time
		t.LastRemindedAt = &v
	}
	return &t, nil
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			user_id, parent_task_id, title, description, date_time, priority, status,
			position, category, tags, reminder_enabled, reminder_minutes_before
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		task.UserID, task.ParentTaskID, task.Title, task.Description, task.DateTime,
		string(task.Priority), task.Status, task.Position, task.Category, pq.Array(task.Tags),
		task.ReminderEnabled, task.ReminderMinutesBefore,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	return mapError(err)
}

func (r *taskRepository) FindByID(ctx context.Context, userID, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}
	argID := 2

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argID))
		args = append(args, string(*filter.Priority))
		argID++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, *filter.Category)
		argID++
	}
	if filter.ParentID != nil {
		conditions = append(conditions, fmt.Sprintf("parent_task_id = $%d", argID))
		args = append(args, *filter.ParentID)
	} else if filter.TopLevel {
		conditions = append(conditions, "parent_task_id IS NULL")
	}

	baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	baseQuery += " ORDER BY position ASC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title=$1, description=$2, date_time=$3, priority=$4, status=$5, position=$6,
			category=$7, tags=$8, reminder_enabled=$9, reminder_minutes_before=$10,
			last_reminded_at=$11, updated_at=NOW()
		WHERE id=$12 AND user_id=$13
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.DateTime, string(task.Priority), task.Status, task.Position,
		task.Category, pq.Array(task.Tags), task.ReminderEnabled, task.ReminderMinutesBefore,
		task.LastRemindedAt, task.ID, task.UserID,
	).Scan(&task.UpdatedAt)
	return mapError(err)
}

func (r *taskRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListDueForReminder returns incomplete tasks whose reminder window
// [date_time - reminder_minutes_before, date_time) contains now and that were not
// reminded inside that window yet. Owners without a linked Telegram chat are skipped.
func (r *taskRepository) ListDueForReminder(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	q := `
SELECT t.id, t.title, t.date_time, u.telegram_id
FROM tasks t
JOIN users u ON u.id = t.user_id
WHERE t.reminder_enabled
  AND NOT t.status
  AND t.date_time IS NOT NULL
  AND u.telegram_id IS NOT NULL
  AND u.is_active
  AND t.date_time > $1
  AND t.date_time - make_interval(mins => t.reminder_minutes_before) <= $1
  AND (t.last_reminded_at IS NULL
       OR t.last_reminded_at < t.date_time - make_interval(mins => t.reminder_minutes_before))
ORDER BY t.date_time ASC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reminder
	for rows.Next() {
		var rm models.Reminder
		if err := rows.Scan(&rm.TaskID, &rm.Title, &rm.DateTime, &rm.ChatID); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *taskRepository) SetReminderFired(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET last_reminded_at = $1 WHERE id=$2`, at, id)
	return err
}
