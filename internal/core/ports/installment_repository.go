package ports

import (
	"context"
	"time"

	"github.com/microloans/loan-system/internal/core/domain"
)

// InstallmentRepository defines persistence operations for installments.
type InstallmentRepository interface {
	// CreateMany persists a freshly generated payment schedule in bulk.
	CreateMany(ctx context.Context, installments []*domain.Installment) error
	// FindByID retrieves an installment scoped to its owner. The userID
	// filter is what prevents a user from settling someone else's
	// installment: a foreign row is indistinguishable from a missing one.
	FindByID(ctx context.Context, id string, userID string) (*domain.Installment, error)
	// MarkPaid flips a pending installment to paid. Returns
	// domain.ErrInstallmentNotFound when the installment is absent or no
	// longer pending, so a concurrent double-payment settles only once.
	MarkPaid(ctx context.Context, id string) error
	ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error)
	// DeleteByLoan removes every installment of a loan. Used to back out a
	// schedule whose approval lost the status race.
	DeleteByLoan(ctx context.Context, loanID string) error
	// NextPending returns the caller's pending installment with the
	// earliest due date after the given instant.
	NextPending(ctx context.Context, userID string, after time.Time) (*domain.Installment, error)
}

// AuditRepository persists payment lifecycle events to the audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.PaymentEvent) error
}
