package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func memoryDSN(t *testing.T) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
}

func openWidgets(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return conn
}

func countWidgets(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&widget{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	conn := openWidgets(t)
	client := NewFromConn(conn)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&widget{Name: "kept"}).Error
	}))
	assert.EqualValues(t, 1, countWidgets(t, conn))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&widget{Name: "dropped"}).Error)
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")
	assert.EqualValues(t, 1, countWidgets(t, conn))

	assert.Panics(t, func() {
		_ = client.WithTx(ctx, func(tx *gorm.DB) error {
			tx.Create(&widget{Name: "panicked"})
			panic("handler bug")
		})
	})
	assert.EqualValues(t, 1, countWidgets(t, conn))
}

func TestNewOpensSQLiteAndLogsSlowQueries(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "db-test", Output: &buf})

	client, err := New(context.Background(), config.DBConfig{
		Driver:       " SQLite ",
		DSN:          memoryDSN(t),
		MaxOpenConns: 1,
		SlowQuery:    time.Nanosecond,
	}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.DB().Exec("SELECT 1").Error)
	assert.Contains(t, buf.String(), "db.connected")
	assert.Contains(t, buf.String(), "db.slow_query")
	assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)
}

func TestQueryLoggerIgnoresRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	ql := newQueryLogger(logger.New(logger.Options{Output: &buf}), time.Hour)

	ql.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT *", 0 }, gorm.ErrRecordNotFound)
	assert.Zero(t, buf.Len())

	ql.Trace(context.Background(), time.Now(), func() (string, int64) { return "INSERT", 0 }, errors.New("disk full"))
	assert.Contains(t, buf.String(), "db.query_failed")
	assert.Contains(t, buf.String(), "disk full")
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: DriverSQLite}, nil)
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	conn := openWidgets(t)
	require.NoError(t, conn.Create(&widget{Name: "dup"}).Error)
	assert.True(t, IsUniqueViolation(conn.Create(&widget{Name: "dup"}).Error, ""))

	pgErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "listings_name_key"})
	assert.True(t, IsUniqueViolation(pgErr, "listings_name_key"))
	assert.False(t, IsUniqueViolation(pgErr, "users_email_key"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestDialectorFor(t *testing.T) {
	_, err := dialectorFor(config.DBConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)

	d, err := dialectorFor(config.DBConfig{Driver: DriverSQLite, DSN: "file::memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = dialectorFor(config.DBConfig{DSN: "postgres://localhost/x"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}
