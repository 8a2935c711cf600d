package database

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_RunsEveryMigrationInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer mock.Close()

	for _, m := range migrations {
		mock.ExpectExec(m).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	db := &DB{Pool: mock}
	require.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(migrations[0]).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(migrations[1]).WillReturnError(errors.New("permission denied"))

	db := &DB{Pool: mock}
	err = db.Migrate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2 failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_EmptyURL(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.Error(t, err)
}
