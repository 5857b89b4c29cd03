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

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ApprovalGuard abstracts the once-only marker (Redis) taken before a loan
// approval generates its schedule.
type ApprovalGuard interface {
	// Acquire returns true when the caller won the marker for this loan.
	Acquire(ctx context.Context, loanID string) (bool, error)
	// Release drops the marker so a failed approval can be retried.
	Release(ctx context.Context, loanID string) error
}

// AuditSink receives lifecycle events for asynchronous persistence.
type AuditSink interface {
	Enqueue(event domain.PaymentEvent)
}

// LoanService implements loan creation, listing, and the admin decision.
type LoanService struct {
	loans        ports.LoanRepository
	installments ports.InstallmentRepository
	guard        ApprovalGuard
	audit        AuditSink
	logger       zerolog.Logger
}

func NewLoanService(
	loans ports.LoanRepository,
	installments ports.InstallmentRepository,
	guard ApprovalGuard,
	audit AuditSink,
	logger zerolog.Logger,
) *LoanService {
	return &LoanService{
		loans:        loans,
		installments: installments,
		guard:        guard,
		audit:        audit,
		logger:       logger,
	}
}

// CreateLoan inserts a new loan awaiting admin approval.
func (s *LoanService) CreateLoan(ctx context.Context, input ports.CreateLoanInput) (*ports.LoanResult, error) {
	if input.Terms < 1 || input.Terms > domain.MaxLoanTerms {
		return nil, domain.ErrInvalidLoanTerms
	}
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidLoanAmount
	}

	loan := &domain.Loan{
		Amount:    input.Amount,
		Terms:     input.Terms,
		StartDate: time.Now().UTC(),
		Status:    domain.StatusWaitingApproval,
		UserID:    input.UserID,
	}

	created, err := s.loans.Create(ctx, loan)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to create loan")
		return nil, fmt.Errorf("create loan: %w", err)
	}

	metrics.LoansCreatedTotal.Inc()
	s.audit.Enqueue(domain.PaymentEvent{
		Kind:      domain.EventLoanCreated,
		LoanID:    created.ID,
		UserID:    created.UserID,
		Amount:    float64(created.Amount),
		Timestamp: created.StartDate,
	})
	s.logger.Info().Str("loan_id", created.ID).Str("user_id", created.UserID).Int64("amount", created.Amount).Msg("loan created")

	return &ports.LoanResult{
		ID:        created.ID,
		Amount:    created.Amount,
		Terms:     created.Terms,
		Status:    string(created.Status),
		StartDate: created.StartDate,
	}, nil
}

// DecideLoan applies an admin verdict to a pending loan. Approval
// materializes the payment schedule; this runs at most once per loan.
func (s *LoanService) DecideLoan(ctx context.Context, input ports.DecideLoanInput) (*ports.DecideLoanResult, error) {
	if input.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	decision := domain.Decision(input.Decision)
	if decision != domain.DecisionApproved && decision != domain.DecisionRejected {
		return nil, domain.ErrInvalidDecision
	}

	loan, err := s.loans.FindByID(ctx, input.LoanID, "")
	if err != nil {
		return nil, fmt.Errorf("decide loan: %w", err)
	}
	if !loan.Decidable() {
		return nil, domain.ErrLoanAlreadyDecided
	}

	if decision == domain.DecisionApproved {
		return s.approve(ctx, loan)
	}

	if err := s.loans.UpdateStatus(ctx, loan.ID, domain.StatusWaitingApproval, domain.StatusRejected); err != nil {
		return nil, fmt.Errorf("decide loan: %w", err)
	}

	metrics.LoanDecisionsTotal.WithLabelValues("rejected").Inc()
	s.audit.Enqueue(domain.PaymentEvent{
		Kind:      domain.EventLoanDecided,
		LoanID:    loan.ID,
		UserID:    loan.UserID,
		Timestamp: time.Now().UTC(),
	})
	s.logger.Info().Str("loan_id", loan.ID).Msg("loan rejected")

	return &ports.DecideLoanResult{Status: string(domain.StatusRejected)}, nil
}

// approve transitions the loan and generates its installments. The Redis
// once-marker plus the compare-and-set status update guarantee the schedule
// is never written twice, even under concurrent approvals.
func (s *LoanService) approve(ctx context.Context, loan *domain.Loan) (*ports.DecideLoanResult, error) {
	won, err := s.guard.Acquire(ctx, loan.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("loan_id", loan.ID).Msg("approval guard unavailable, relying on status precondition")
	} else if !won {
		return nil, domain.ErrLoanAlreadyDecided
	}

	// Persist the schedule before flipping the status: a loan must never
	// read as approved with zero installments. On failure the marker is
	// released so the decision can be retried.
	approvedAt := time.Now().UTC()
	schedule := BuildSchedule(loan, approvedAt)
	if err := s.installments.CreateMany(ctx, schedule); err != nil {
		s.logger.Error().Err(err).Str("loan_id", loan.ID).Msg("failed to persist payment schedule")
		s.releaseGuard(ctx, loan.ID)
		return nil, fmt.Errorf("approve loan: persist schedule: %w", err)
	}

	if err := s.loans.UpdateStatus(ctx, loan.ID, domain.StatusWaitingApproval, domain.StatusApproved); err != nil {
		// A concurrent rejection won the status race; the rows just written
		// are orphans and must not survive.
		if delErr := s.installments.DeleteByLoan(ctx, loan.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("loan_id", loan.ID).Msg("failed to remove orphaned schedule")
		}
		s.releaseGuard(ctx, loan.ID)
		return nil, fmt.Errorf("approve loan: %w", err)
	}

	metrics.LoanDecisionsTotal.WithLabelValues("approved").Inc()
	s.audit.Enqueue(domain.PaymentEvent{
		Kind:      domain.EventLoanDecided,
		LoanID:    loan.ID,
		UserID:    loan.UserID,
		Amount:    float64(loan.Amount),
		Timestamp: approvedAt,
	})
	s.logger.Info().Str("loan_id", loan.ID).Int("installments", len(schedule)).Msg("loan approved")

	return &ports.DecideLoanResult{
		Status:       string(domain.StatusApproved),
		Installments: len(schedule),
	}, nil
}

func (s *LoanService) releaseGuard(ctx context.Context, loanID string) {
	if err := s.guard.Release(ctx, loanID); err != nil {
		s.logger.Warn().Err(err).Str("loan_id", loanID).Msg("failed to release approval marker")
	}
}

// ListLoans returns a page of loans. Admins see every loan; borrowers only
// their own.
func (s *LoanService) ListLoans(ctx context.Context, input ports.ListLoansInput) (*ports.ListLoansResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := ports.ListLoansFilter{
		Status: input.Status,
		Page:   page,
		Limit:  limit,
	}
	if input.Role != domain.RoleAdmin {
		filter.UserID = input.UserID
	}

	loans, total, err := s.loans.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	items := make([]ports.LoanSummary, len(loans))
	for i, l := range loans {
		items[i] = ports.LoanSummary{
			ID:        l.ID,
			Amount:    l.Amount,
			Terms:     l.Terms,
			Status:    string(l.Status),
			StartDate: l.StartDate,
			UserID:    l.UserID,
		}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListLoansResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}
