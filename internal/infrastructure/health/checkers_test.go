package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraDB "github.com/breachwatch/monitor/internal/infrastructure/db"
)

func TestDBHealthChecker(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	checker := NewDBHealthChecker(infraDB.Wrap(mockDB))
	assert.Equal(t, "database", checker.Name())

	mock.ExpectPing()
	assert.NoError(t, checker.Check(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, checker.Check(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHealthChecker(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	checker := NewRedisHealthChecker(client)
	assert.Equal(t, "redis", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))

	mr.Close()
	assert.Error(t, checker.Check(context.Background()))
}

func TestHealthCheckers_NilDependencies(t *testing.T) {
	assert.ErrorIs(t, NewDBHealthChecker(nil).Check(context.Background()), errNotConfigured)
	assert.ErrorIs(t, NewRedisHealthChecker(nil).Check(context.Background()), errNotConfigured)
}
