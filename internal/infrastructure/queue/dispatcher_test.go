package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/microloans/loan-system/internal/core/domain"
)

type captureRecorder struct {
	mu     sync.Mutex
	events []domain.PaymentEvent
	done   chan struct{}
	want   int
}

func newCaptureRecorder(want int) *captureRecorder {
	return &captureRecorder{done: make(chan struct{}), want: want}
}

func (r *captureRecorder) Record(_ context.Context, event domain.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

func (r *captureRecorder) wait(t *testing.T) []domain.PaymentEvent {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %d events", r.want)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.PaymentEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	rec := newCaptureRecorder(3)
	d := NewDispatcher(2, rec, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(domain.PaymentEvent{Kind: domain.EventLoanCreated, LoanID: "loan_1", UserID: "user_1"})
	d.Enqueue(domain.PaymentEvent{Kind: domain.EventLoanDecided, LoanID: "loan_1", UserID: "user_1"})
	d.Enqueue(domain.PaymentEvent{Kind: domain.EventPaymentMade, LoanID: "loan_2", UserID: "user_2"})

	events := rec.wait(t)
	kinds := map[domain.PaymentEventKind]int{}
	for _, ev := range events {
		kinds[ev.Kind]++
	}
	if kinds[domain.EventLoanCreated] != 1 || kinds[domain.EventLoanDecided] != 1 || kinds[domain.EventPaymentMade] != 1 {
		t.Fatalf("unexpected events delivered: %+v", events)
	}
}

func TestDispatcher_SameLoanSameWorker(t *testing.T) {
	d := NewDispatcher(4, newCaptureRecorder(0), zerolog.Nop())

	first := d.shardIndex("loan_42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("loan_42"); got != first {
			t.Fatalf("shard index not stable: %d vs %d", got, first)
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, newCaptureRecorder(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcher_PerLoanOrdering(t *testing.T) {
	rec := newCaptureRecorder(4)
	d := NewDispatcher(3, rec, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	order := []domain.PaymentEventKind{
		domain.EventLoanCreated,
		domain.EventLoanDecided,
		domain.EventPaymentMade,
		domain.EventLoanClosed,
	}
	for _, kind := range order {
		d.Enqueue(domain.PaymentEvent{Kind: kind, LoanID: "loan_7", UserID: "user_1"})
	}

	events := rec.wait(t)
	for i, ev := range events {
		if ev.Kind != order[i] {
			t.Fatalf("event %d out of order: got %s, want %s", i, ev.Kind, order[i])
		}
	}
}
