package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/microloans/loan-system/internal/api/metrics"
	"github.com/microloans/loan-system/internal/core/domain"
	"github.com/microloans/loan-system/internal/core/ports"
)

// Messages returned to the borrower on a payment attempt.
const (
	msgPaymentSettled  = "Payment successful. Payment marked as Paid."
	msgPaymentDeclined = "Transaction failed. Payment amount is less than the due amount."
)

type paymentService struct {
	installments ports.InstallmentRepository
	loans        ports.LoanRepository
	audit        AuditSink
	log          zerolog.Logger
}

// NewPaymentService returns a PaymentService implementation.
func NewPaymentService(
	installments ports.InstallmentRepository,
	loans ports.LoanRepository,
	audit AuditSink,
	log zerolog.Logger,
) ports.PaymentService {
	return &paymentService{
		installments: installments,
		loans:        loans,
		audit:        audit,
		log:          log,
	}
}

// MakePayment applies a payment to the caller's installment.
func (s *paymentService) MakePayment(ctx context.Context, in ports.MakePaymentInput) (*ports.PaymentResult, error) {
	start := time.Now()

	// 1. Ownership-scoped lookup: someone else's installment is a 404.
	inst, err := s.installments.FindByID(ctx, in.InstallmentID, in.UserID)
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("make payment: %w", err)
	}

	// 2. Sufficiency check. A short payment is declined, not an error:
	//    nothing is mutated. Overpayment is accepted without credit.
	if in.Amount < inst.Amount {
		metrics.PaymentsTotal.WithLabelValues("declined").Inc()
		metrics.PaymentProcessingDuration.WithLabelValues("declined").Observe(time.Since(start).Seconds())
		s.log.Info().
			Str("installment_id", inst.ID).
			Float64("due", inst.Amount).
			Float64("offered", in.Amount).
			Msg("payment declined, amount below due")
		return &ports.PaymentResult{Settled: false, Message: msgPaymentDeclined}, nil
	}

	// 3. Settle. MarkPaid only matches a still-pending row, so a concurrent
	//    double-payment settles exactly once.
	if err := s.installments.MarkPaid(ctx, inst.ID); err != nil {
		metrics.PaymentsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("make payment: mark paid: %w", err)
	}

	metrics.PaymentsTotal.WithLabelValues("settled").Inc()
	metrics.InstallmentsSettledTotal.Inc()
	s.audit.Enqueue(domain.PaymentEvent{
		Kind:          domain.EventPaymentMade,
		LoanID:        inst.LoanID,
		InstallmentID: inst.ID,
		UserID:        in.UserID,
		Amount:        in.Amount,
		Timestamp:     time.Now().UTC(),
	})

	// 4. Closure check: recomputed from scratch after every settlement.
	closed, err := s.checkLoanClosure(ctx, inst.LoanID)
	if err != nil {
		// The payment itself is committed; closure will be retried on the
		// next settlement against this loan.
		s.log.Warn().Err(err).Str("loan_id", inst.LoanID).Msg("loan closure check failed")
	}

	metrics.PaymentProcessingDuration.WithLabelValues("settled").Observe(time.Since(start).Seconds())
	s.log.Info().
		Str("installment_id", inst.ID).
		Str("loan_id", inst.LoanID).
		Bool("loan_closed", closed).
		Msg("payment settled")

	return &ports.PaymentResult{Settled: true, Message: msgPaymentSettled, LoanClosed: closed}, nil
}

// checkLoanClosure re-scans the loan's installments and flips the loan to
// paid once every one has settled. O(terms) per payment, acceptable with
// terms capped at twelve.
func (s *paymentService) checkLoanClosure(ctx context.Context, loanID string) (bool, error) {
	installments, err := s.installments.ListByLoan(ctx, loanID)
	if err != nil {
		return false, fmt.Errorf("list installments: %w", err)
	}
	if len(installments) == 0 {
		return false, nil
	}
	for _, inst := range installments {
		if inst.PaymentStatus != domain.InstallmentPaid {
			return false, nil
		}
	}

	if err := s.loans.UpdateStatus(ctx, loanID, domain.StatusApproved, domain.StatusPaid); err != nil {
		return false, fmt.Errorf("close loan: %w", err)
	}

	s.audit.Enqueue(domain.PaymentEvent{
		Kind:      domain.EventLoanClosed,
		LoanID:    loanID,
		Timestamp: time.Now().UTC(),
	})
	s.log.Info().Str("loan_id", loanID).Msg("loan fully settled")
	return true, nil
}

// NextPendingInstallment returns the caller's earliest future pending
// installment.
func (s *paymentService) NextPendingInstallment(ctx context.Context, userID string) (*ports.InstallmentView, error) {
	inst, err := s.installments.NextPending(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("next pending installment: %w", err)
	}
	return &ports.InstallmentView{
		ID:            inst.ID,
		LoanID:        inst.LoanID,
		Amount:        inst.Amount,
		DueDate:       inst.DueDate,
		PaymentStatus: string(inst.PaymentStatus),
	}, nil
}
