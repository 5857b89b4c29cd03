package ports

import (
	"context"
	"time"
)

// CreateLoanInput carries all data needed to apply for a loan.
type CreateLoanInput struct {
	Amount int64
	Terms  int
	UserID string
}

// LoanResult is returned by the service after creating a loan.
type LoanResult struct {
	ID        string
	Amount    int64
	Terms     int
	Status    string
	StartDate time.Time
}

// DecideLoanInput carries an admin verdict on a pending loan.
type DecideLoanInput struct {
	LoanID   string
	Decision string
	// Role and ActorID identify the caller; only admins may decide.
	Role    string
	ActorID string
}

// DecideLoanResult reports the applied decision and the generated schedule size.
type DecideLoanResult struct {
	Status       string
	Installments int
}

// ListLoansInput carries all parameters for the list endpoint.
type ListLoansInput struct {
	Role   string
	UserID string
	Status string
	Page   int
	Limit  int
}

// LoanSummary is the view used in list responses.
type LoanSummary struct {
	ID        string
	Amount    int64
	Terms     int
	Status    string
	StartDate time.Time
	UserID    string
}

// ListLoansResult is returned by ListLoans.
type ListLoansResult struct {
	Items      []LoanSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// LoanService defines use-case operations for the loan lifecycle.
type LoanService interface {
	CreateLoan(ctx context.Context, input CreateLoanInput) (*LoanResult, error)
	DecideLoan(ctx context.Context, input DecideLoanInput) (*DecideLoanResult, error)
	ListLoans(ctx context.Context, input ListLoansInput) (*ListLoansResult, error)
}
