package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/microloans/loan-system/internal/api/metrics"
	"github.com/microloans/loan-system/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Recorder is the interface workers use to persist an audit event.
type Recorder interface {
	Record(ctx context.Context, event domain.PaymentEvent) error
}

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the loan ID, guaranteeing per-loan event ordering in the audit
// trail.
type Dispatcher struct {
	workers  []chan domain.PaymentEvent
	recorder Recorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder Recorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.PaymentEvent, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.PaymentEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its loan. The call
// never blocks a request: when the worker's buffer is full the event is
// dropped and counted.
func (d *Dispatcher) Enqueue(event domain.PaymentEvent) {
	idx := d.shardIndex(event.LoanID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().Str("loan_id", event.LoanID).Str("kind", string(event.Kind)).Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a loan ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(loanID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(loanID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.PaymentEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.recorder.Record(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("loan_id", event.LoanID).
					Int("worker_id", id).
					Msg("audit event persistence failed")
			}
		}
	}
}
