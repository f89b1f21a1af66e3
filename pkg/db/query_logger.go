package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// queryLogger adapts GORM's logger interface to the service logger. Only
// failed statements and statements slower than slow are reported.
type queryLogger struct {
	logg *logger.Logger
	slow time.Duration
}

func newQueryLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &queryLogger{logg: logg, slow: slow}
}

func (q *queryLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return q }

func (q *queryLogger) Info(ctx context.Context, msg string, args ...any) {
	q.logg.Debug(ctx, fmt.Sprintf(msg, args...))
}

func (q *queryLogger) Warn(ctx context.Context, msg string, args ...any) {
	q.logg.Warn(ctx, fmt.Sprintf(msg, args...))
}

func (q *queryLogger) Error(ctx context.Context, msg string, args ...any) {
	q.logg.Error(ctx, "db.error", fmt.Errorf(msg, args...))
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := q.slow > 0 && elapsed > q.slow
	if !failed && !slow {
		return
	}
	sql, rows := fc()
	ctx = q.logg.WithFields(ctx, map[string]any{
		"sql":         sql,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	})
	if failed {
		q.logg.Error(ctx, "db.query_failed", err)
		return
	}
	q.logg.Warn(ctx, "db.slow_query")
}
