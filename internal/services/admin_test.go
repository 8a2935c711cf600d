package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/database"
	"github.com/dimitrije/folio-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adminColumns = []string{"id", "email", "password_hash", "role", "created_at"}

func setupAdminService(t *testing.T) (*AdminService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewAdminService(db), mock
}

func TestAdminService_Lookup(t *testing.T) {
	svc, mock := setupAdminService(t)
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(adminColumns).
		AddRow(id, "admin@example.com", "$2a$12$hash", models.RoleAdmin, now)
	mock.ExpectQuery(`SELECT id, email, password_hash, role, created_at`).
		WithArgs("admin@example.com").
		WillReturnRows(rows)

	admin, err := svc.Lookup(ctx, " Admin@Example.com")

	require.NoError(t, err)
	assert.Equal(t, id, admin.ID)
	assert.Equal(t, "$2a$12$hash", admin.PasswordHash)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminService_Lookup_NotFound(t *testing.T) {
	svc, mock := setupAdminService(t)

	mock.ExpectQuery(`SELECT id, email, password_hash, role, created_at`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Lookup(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, auth.ErrUnknownAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminService_Lookup_DatabaseError(t *testing.T) {
	svc, mock := setupAdminService(t)

	mock.ExpectQuery(`SELECT id, email`).
		WithArgs("admin@example.com").
		WillReturnError(assert.AnError)

	_, err := svc.Lookup(context.Background(), "admin@example.com")

	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrUnknownAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminService_Exists(t *testing.T) {
	svc, mock := setupAdminService(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("admin@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := svc.Exists(context.Background(), "admin@example.com")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminService_Create(t *testing.T) {
	svc, mock := setupAdminService(t)
	id := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(adminColumns).
		AddRow(id, "new@example.com", "hash", models.RoleAdmin, now)
	mock.ExpectQuery(`INSERT INTO admin_users`).
		WithArgs(pgxmock.AnyArg(), "new@example.com", "hash", models.RoleAdmin).
		WillReturnRows(rows)

	admin, err := svc.Create(context.Background(), "New@Example.com", "hash", "")

	require.NoError(t, err)
	assert.Equal(t, id, admin.ID)
	assert.Equal(t, "new@example.com", admin.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminService_Create_AlreadyExists(t *testing.T) {
	svc, mock := setupAdminService(t)

	mock.ExpectQuery(`INSERT INTO admin_users`).
		WithArgs(pgxmock.AnyArg(), "admin@example.com", "hash", models.RoleAdmin).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Create(context.Background(), "admin@example.com", "hash", models.RoleAdmin)

	assert.ErrorIs(t, err, ErrAdminExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminService_IsAdminDirectory(t *testing.T) {
	var _ auth.AdminDirectory = (*AdminService)(nil)
}
