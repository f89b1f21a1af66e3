package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Client owns the process-wide GORM handle and its connection pool.
type Client struct {
	conn *gorm.DB
}

// New opens the configured database, applies pool limits and routes GORM's
// own logging (slow queries, driver errors) through logg.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName(cfg), err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName(cfg), err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "db_driver", driverName(cfg)), "db.connected")
	}
	return &Client{conn: conn}, nil
}

// NewFromConn wraps an existing handle, mostly for tests.
func NewFromConn(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func driverName(cfg config.DBConfig) string {
	if d := strings.ToLower(strings.TrimSpace(cfg.Driver)); d != "" {
		return d
	}
	return DriverPostgres
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch driverName(cfg) {
	case DriverPostgres:
		return postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true}), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn in a transaction. A returned error or a panic rolls back.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
