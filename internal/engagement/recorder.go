package engagement

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/logger"
)

const (
	defaultBufferSize    = 512
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
)

type rowWriter interface {
	Write(ctx context.Context, rows []Row) error
}

// BufferedRecorder queues events in memory and writes them in batches from a
// background goroutine. Events are dropped when the queue is full.
type BufferedRecorder struct {
	writer        rowWriter
	logg          *logger.Logger
	events        chan Event
	batchSize     int
	flushInterval time.Duration

	once sync.Once
	done chan struct{}
}

// RecorderConfig tunes a BufferedRecorder.
type RecorderConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

// NewBufferedRecorder builds a recorder writing through w.
func NewBufferedRecorder(w rowWriter, logg *logger.Logger, cfg RecorderConfig) (*BufferedRecorder, error) {
	if w == nil {
		return nil, errors.New("engagement writer required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	return &BufferedRecorder{
		writer:        w,
		logg:          logg,
		events:        make(chan Event, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		done:          make(chan struct{}),
	}, nil
}

// Record enqueues event without blocking.
func (r *BufferedRecorder) Record(ctx context.Context, event Event) {
	select {
	case r.events <- event:
	default:
		if r.logg != nil {
			r.logg.Warn(r.logg.WithField(ctx, "event_type", string(event.Type)), "engagement queue full, dropping event")
		}
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (r *BufferedRecorder) Run(ctx context.Context) {
	defer r.once.Do(func() { close(r.done) })

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]Row, 0, r.batchSize)
	flush := func(flushCtx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := r.writer.Write(flushCtx, batch); err != nil && r.logg != nil {
			r.logg.Error(r.logg.WithField(flushCtx, "rows", len(batch)), "engagement write failed", err)
		}
		batch = batch[:0]
	}
	add := func(event Event) {
		row, err := event.ToRow()
		if err != nil {
			if r.logg != nil {
				r.logg.Error(ctx, "engagement row encode failed", err)
			}
			return
		}
		batch = append(batch, row)
	}

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.flushInterval)
			for drained := false; !drained; {
				select {
				case event := <-r.events:
					add(event)
				default:
					drained = true
				}
			}
			flush(drainCtx)
			cancel()
			return
		case event := <-r.events:
			add(event)
			if len(batch) >= r.batchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (r *BufferedRecorder) Done() <-chan struct{} {
	return r.done
}
