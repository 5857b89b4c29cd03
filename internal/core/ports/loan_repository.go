package ports

import (
	"context"

	"github.com/microloans/loan-system/internal/core/domain"
)

// ListLoansFilter carries all query parameters for listing loans.
// UserID is always enforced by the service layer (RBAC).
type ListLoansFilter struct {
	UserID string // empty = no filter (admin); non-empty = scoped to owner
	Status string // optional: filter by loan status
	Page   int    // 1-based
	Limit  int    // max rows per page (capped at 100 by service)
}

// LoanRepository defines persistence operations for loans.
type LoanRepository interface {
	Create(ctx context.Context, l *domain.Loan) (*domain.Loan, error)
	// FindByID retrieves a loan by id. When userID is non-empty, the query
	// is additionally filtered by user_id (for RBAC).
	FindByID(ctx context.Context, id string, userID string) (*domain.Loan, error)
	// UpdateStatus sets the loan's status. When from is non-empty the update
	// only applies while the stored status still equals from, so two
	// concurrent decisions cannot both succeed.
	UpdateStatus(ctx context.Context, id string, from, to domain.LoanStatus) error
	// List returns a page of loans matching filter and the total count.
	List(ctx context.Context, filter ListLoansFilter) ([]*domain.Loan, int64, error)
}
