package engagement

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type insertCall struct {
	table    string
	rowCount int
}

type fakeInserter struct {
	mu        sync.Mutex
	responses []error
	calls     []insertCall
}

func (f *fakeInserter) InsertRows(_ context.Context, table string, rows []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := len(f.calls)
	f.calls = append(f.calls, insertCall{table: table, rowCount: len(rows)})
	if idx < len(f.responses) {
		return f.responses[idx]
	}
	return nil
}

func (f *fakeInserter) rows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, c := range f.calls {
		total += c.rowCount
	}
	return total
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaximumBackoff: time.Millisecond}
}

func TestEventToRow(t *testing.T) {
	listingID := uuid.New()
	row, err := Event{
		Type:       enums.EngagementLiked,
		ListingID:  &listingID,
		Attributes: map[string]any{"source": "card"},
	}.ToRow()
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	if row.EventID == "" || !row.OccurredAt.Valid {
		t.Fatalf("expected generated id and timestamp, got %+v", row)
	}
	if row.ListingID.StringVal != listingID.String() || row.UserID.Valid {
		t.Fatalf("unexpected ids %+v", row)
	}
	if !row.Attributes.Valid || row.Attributes.JSONVal != `{"source":"card"}` {
		t.Fatalf("unexpected attributes %+v", row.Attributes)
	}
	if row.Query.Valid {
		t.Fatal("expected empty query to be null")
	}
}

func TestWriterRetriesTransientErrors(t *testing.T) {
	fake := &fakeInserter{responses: []error{&googleapi.Error{Code: http.StatusServiceUnavailable}, nil}}
	w := newWriter(fake, "listing_engagement", fastRetry())

	if err := w.Write(context.Background(), []Row{{EventID: "1"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected retry, got %d calls", len(fake.calls))
	}
	if fake.calls[1].table != "listing_engagement" {
		t.Fatalf("unexpected table %s", fake.calls[1].table)
	}
}

func TestWriterStopsOnPermanentError(t *testing.T) {
	fake := &fakeInserter{responses: []error{&googleapi.Error{Code: http.StatusBadRequest}}}
	w := newWriter(fake, "listing_engagement", fastRetry())

	if err := w.Write(context.Background(), []Row{{EventID: "1"}}); err == nil {
		t.Fatal("expected error")
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(fake.calls))
	}
}

func TestIsRetryable(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"unavailable grpc": {status.Error(codes.Unavailable, "down"), true},
		"invalid grpc":     {status.Error(codes.InvalidArgument, "bad"), false},
		"rate limited":     {&googleapi.Error{Code: http.StatusTooManyRequests}, true},
		"plain":            {errors.New("boom"), false},
		"nil":              {nil, false},
	}
	for name, tc := range cases {
		if got := isRetryable(tc.err); got != tc.want {
			t.Errorf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}

func TestBufferedRecorderFlushesOnShutdown(t *testing.T) {
	fake := &fakeInserter{}
	rec, err := NewBufferedRecorder(newWriter(fake, "t", fastRetry()), nil, RecorderConfig{
		BatchSize:     100,
		FlushInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go rec.Run(ctx)

	for i := 0; i < 3; i++ {
		rec.Record(context.Background(), Event{Type: enums.EngagementTried})
	}
	cancel()

	select {
	case <-rec.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not stop")
	}
	if got := fake.rows(); got != 3 {
		t.Fatalf("expected 3 rows flushed, got %d", got)
	}
}

func TestBufferedRecorderFlushesFullBatch(t *testing.T) {
	fake := &fakeInserter{}
	rec, err := NewBufferedRecorder(newWriter(fake, "t", fastRetry()), nil, RecorderConfig{
		BatchSize:     2,
		FlushInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	rec.Record(ctx, Event{Type: enums.EngagementSaved})
	rec.Record(ctx, Event{Type: enums.EngagementSaved})

	deadline := time.Now().Add(2 * time.Second)
	for fake.rows() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("batch was not flushed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBufferedRecorderDropsWhenFull(t *testing.T) {
	rec, err := NewBufferedRecorder(newWriter(&fakeInserter{}, "t", fastRetry()), nil, RecorderConfig{BufferSize: 1})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Record(context.Background(), Event{Type: enums.EngagementLiked})
	rec.Record(context.Background(), Event{Type: enums.EngagementLiked})
	if len(rec.events) != 1 {
		t.Fatalf("expected one queued event, got %d", len(rec.events))
	}
}

func TestNewWriterValidation(t *testing.T) {
	if _, err := NewWriter(nil, RetryPolicy{}); err == nil {
		t.Fatal("expected error without client")
	}
}

func TestWriterGivesUpAfterMaxAttempts(t *testing.T) {
	unavailable := status.Error(codes.Unavailable, "down")
	fake := &fakeInserter{responses: []error{unavailable, unavailable, unavailable, nil}}
	w := newWriter(fake, "listing_engagement", fastRetry())

	err := w.Write(context.Background(), []Row{{EventID: "1"}})
	if !errors.Is(err, unavailable) {
		t.Fatalf("expected wrapped grpc error, got %v", err)
	}
	if len(fake.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(fake.calls))
	}
}

func TestIsRetryablePartialInsert(t *testing.T) {
	transient := cbigquery.PutMultiError{{RowIndex: 0, Errors: cbigquery.MultiError{&googleapi.Error{Code: http.StatusServiceUnavailable}}}}
	if !isRetryable(transient) {
		t.Fatal("expected all-transient row errors to retry")
	}
	mixed := append(transient, cbigquery.RowInsertionError{RowIndex: 1, Errors: cbigquery.MultiError{errors.New("no such field")}})
	if isRetryable(mixed) {
		t.Fatal("expected a schema error to stop retries")
	}
}
