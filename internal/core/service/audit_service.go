package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/microloans/loan-system/internal/core/domain"
	"github.com/microloans/loan-system/internal/core/ports"
)

// AuditRecorder persists lifecycle events delivered by the audit
// dispatcher. Failures are surfaced to the caller for logging only; the
// audit trail is best-effort and never blocks a request.
type AuditRecorder struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewAuditRecorder(repo ports.AuditRepository, log zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, log: log}
}

func (r *AuditRecorder) Record(ctx context.Context, event domain.PaymentEvent) error {
	if err := r.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	r.log.Debug().
		Str("kind", string(event.Kind)).
		Str("loan_id", event.LoanID).
		Msg("audit event recorded")
	return nil
}
