package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"vectora/internal/errs"
	"vectora/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, hashed string) error
	TouchLastLogin(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, telegram_id, username, email, hashed_password,
	is_active, is_admin, created_at, updated_at, last_login`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		tgID      sql.NullInt64
		email     sql.NullString
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&u.ID, &tgID, &u.Username, &email, &u.HashedPassword,
		&u.IsActive, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt, &lastLogin,
	); err != nil {
		return nil, err
	}
	if tgID.Valid {
		v := tgID.Int64
		u.TelegramID = &v
	}
	if email.Valid {
		s := email.String
		u.Email = &s
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

// mapError turns driver errors into the errs taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", errs.ErrAlreadyExists, pqErr.Constraint)
	}
	return err
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (telegram_id, username, email, hashed_password, is_active, is_admin)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, q,
		user.TelegramID, user.Username, user.Email, user.HashedPassword, user.IsActive, user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapError(err)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return r.getOne(ctx, "telegram_id = $1", telegramID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

// Update writes every mutable column, the password hash included, in one statement.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	const q = `
		UPDATE users
		SET username=$1, email=$2, hashed_password=$3, telegram_id=$4, is_active=$5, is_admin=$6, updated_at=NOW()
		WHERE id=$7
		RETURNING updated_at`
	err := r.DB.QueryRowContext(ctx, q,
		user.Username, user.Email, user.HashedPassword, user.TelegramID, user.IsActive, user.IsAdmin, user.ID,
	).Scan(&user.UpdatedAt)
	return mapError(err)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET hashed_password=$1, updated_at=NOW() WHERE id=$2`, hashed, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login=NOW() WHERE id=$1`, id)
	return err
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
