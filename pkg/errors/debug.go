package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// LogFields flattens err into structured log fields: the code, the unwrap
// chain, and the Postgres diagnostics when a driver error is underneath.
func LogFields(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	chain := []string{}
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T: %v", e, e))
	}
	fields := map[string]any{
		"error":       err.Error(),
		"error_code":  CodeOf(err),
		"error_chain": chain,
	}

	var pgErr *pgconn.PgError
	if stdErrors.As(err, &pgErr) {
		for k, v := range map[string]string{
			"pg_code":       pgErr.Code,
			"pg_message":    pgErr.Message,
			"pg_detail":     pgErr.Detail,
			"pg_table":      pgErr.TableName,
			"pg_column":     pgErr.ColumnName,
			"pg_constraint": pgErr.ConstraintName,
		} {
			if v != "" {
				fields[k] = v
			}
		}
	}
	return fields
}
