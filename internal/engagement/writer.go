package engagement

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	pkgbigquery "github.com/aarav-aiphi/Backend/pkg/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// RetryPolicy bounds insert retries. Zero fields take the package defaults.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// Writer inserts engagement rows into a single BigQuery table.
type Writer struct {
	client tableInserter
	table  string
	retry  RetryPolicy
}

// NewWriter binds a writer to the engagement table of client.
func NewWriter(client *pkgbigquery.Client, retry RetryPolicy) (*Writer, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table := strings.TrimSpace(client.EngagementTable())
	if table == "" {
		return nil, errors.New("engagement table is required")
	}
	return newWriter(client, table, retry), nil
}

func newWriter(client tableInserter, table string, retry RetryPolicy) *Writer {
	retry.MaxAttempts = cmp.Or(max(retry.MaxAttempts, 0), defaultMaxAttempts)
	retry.InitialBackoff = cmp.Or(max(retry.InitialBackoff, 0), defaultInitialBackoff)
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = max(defaultMaximumBackoff, retry.InitialBackoff)
	}
	return &Writer{client: client, table: table, retry: retry}
}

// Write inserts rows, retrying transient failures with capped exponential
// backoff. Non-retryable errors return immediately.
func (w *Writer) Write(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	payload := make([]any, len(rows))
	for i := range rows {
		payload[i] = &rows[i]
	}

	delay := w.retry.InitialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = w.client.InsertRows(ctx, w.table, payload); err == nil {
			return nil
		}
		if attempt == w.retry.MaxAttempts || !isRetryable(err) {
			return fmt.Errorf("insert %s rows after %d attempt(s): %w", w.table, attempt, err)
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
		delay = min(2*delay, w.retry.MaximumBackoff)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var (
	retryableHTTP = map[int]bool{
		http.StatusTooManyRequests:     true,
		http.StatusRequestTimeout:      true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	}
	retryableGRPC = map[codes.Code]bool{
		codes.Aborted:           true,
		codes.DeadlineExceeded:  true,
		codes.Internal:          true,
		codes.ResourceExhausted: true,
		codes.Unavailable:       true,
	}
)

// isRetryable reports whether err is a transient BigQuery failure. A partial
// insert is retried only when every row failed for a transient reason.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var multi cbigquery.PutMultiError
	if errors.As(err, &multi) {
		if len(multi) == 0 {
			return false
		}
		for _, row := range multi {
			for _, cause := range row.Errors {
				if !isRetryable(cause) {
					return false
				}
			}
		}
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableHTTP[apiErr.Code]
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		return retryableGRPC[st.Code()]
	}
	return false
}
