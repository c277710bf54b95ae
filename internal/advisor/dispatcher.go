package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tricoach/internal/pmc"
	"tricoach/internal/store"
)

// DefaultQueueSize is the number of pending activities the dispatcher buffers
const DefaultQueueSize = 100

// Store is the persistence the dispatcher reads from and writes notes to
type Store interface {
	GetActivity(id string) (*store.Activity, error)
	DailyMetricOn(day time.Time) (*pmc.Point, error)
	SetAIAnalysis(id, analysis string) error
}

// Dispatcher runs an Advisor over activity IDs in its own goroutine
type Dispatcher struct {
	advisor Advisor
	store   Store
	logger  *slog.Logger

	mu      sync.Mutex
	queue   chan string
	closed  bool
	dropped int
}

// NewDispatcher creates a dispatcher with a queue of the given size.
// Call Run to start processing.
func NewDispatcher(a Advisor, s Store, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		advisor: a,
		store:   s,
		logger:  logger,
		queue:   make(chan string, queueSize),
	}
}

// Enqueue schedules an activity for analysis. It never blocks: when the
// queue is full or closed the ID is dropped and false is returned.
func (d *Dispatcher) Enqueue(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}
	select {
	case d.queue <- id:
		return true
	default:
		d.dropped++
		d.logger.Warn("advisor queue full, dropping activity", "activity_id", id)
		return false
	}
}

// Dropped returns the number of IDs rejected because the queue was full
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close stops accepting work. Run returns once the queue is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
}

// Run processes queued activities until ctx is cancelled or the
// dispatcher is closed and drained. Failures are logged, never returned.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-d.queue:
			if !ok {
				return
			}
			if err := d.process(ctx, id); err != nil {
				d.logger.Error("advisor failed", "activity_id", id, "error", err)
			}
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id string) error {
	a, err := d.store.GetActivity(id)
	if err != nil {
		return fmt.Errorf("loading activity: %w", err)
	}

	form, err := d.store.DailyMetricOn(a.StartTime)
	if err != nil && !errors.Is(err, store.ErrNoDailyMetrics) {
		return fmt.Errorf("loading form: %w", err)
	}

	note, err := d.advisor.Analyze(ctx, Input{Record: a.Record, Form: form})
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	if err := d.store.SetAIAnalysis(id, note); err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}
	d.logger.Debug("activity analyzed", "activity_id", id)
	return nil
}
