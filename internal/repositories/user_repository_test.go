package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectora/internal/errs"
	"vectora/internal/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userCols = []string{
	"id", "telegram_id", "username", "email", "hashed_password",
	"is_active", "is_admin", "created_at", "updated_at", "last_login",
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	tg := int64(279058397)
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users.*RETURNING\s+id,\s*created_at,\s*updated_at`).
		WithArgs(tg, "alice", nil, "$argon2id$x", true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	u := &models.User{TelegramID: &tg, Username: "alice", HashedPassword: "$argon2id$x", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := repo.Create(context.Background(), &models.User{Username: "alice"})
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "users_username_key")
}

func TestUserRepository_GetByID_Nullables(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT\s+id,\s*telegram_id.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, nil, "bob", nil, "h", true, false, now, now, nil))

	u, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.Nil(t, u.TelegramID)
	assert.Nil(t, u.Email)
	assert.Nil(t, u.LastLogin)
}

func TestUserRepository_GetByTelegramID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`WHERE\s+telegram_id\s*=\s*\$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(9, 42, "tg_42", "a@b.c", "h", true, true, now, now, now))

	u, err := repo.GetByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, u.TelegramID)
	assert.Equal(t, int64(42), *u.TelegramID)
	require.NotNil(t, u.Email)
	assert.Equal(t, "a@b.c", *u.Email)
	assert.True(t, u.IsAdmin)
	assert.NotNil(t, u.LastLogin)

	mock.ExpectQuery(`WHERE\s+telegram_id\s*=\s*\$1`).
		WithArgs(int64(43)).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByTelegramID(context.Background(), 43)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepository_UpdatePasswordMissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+hashed_password`).
		WithArgs("new", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), 5, "new"), errs.ErrNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	tg := int64(42)
	u := &models.User{ID: 3, Username: "alice2", HashedPassword: "$argon2id$new", TelegramID: &tg, IsActive: true}
	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET\s+username=\$1,\s*email=\$2,\s*hashed_password=\$3.*WHERE\s+id=\$7`).
		WithArgs("alice2", nil, "$argon2id$new", tg, true, false, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	require.NoError(t, repo.Update(context.Background(), u))
	assert.Equal(t, now, u.UpdatedAt)

	mock.ExpectQuery(`UPDATE\s+users`).
		WillReturnError(&pq.Error{Code: "23505"})
	assert.ErrorIs(t, repo.Update(context.Background(), u), errs.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM\s+users\s+ORDER\s+BY\s+id\s+LIMIT\s+\$1\s+OFFSET\s+\$2`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, nil, "a", nil, "h", true, false, now, now, nil).
			AddRow(2, 5, "b", nil, "h", false, false, now, now, nil))

	users, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.False(t, users[1].IsActive)
}
