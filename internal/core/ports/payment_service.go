package ports

import (
	"context"
	"time"
)

// MakePaymentInput carries a payment submitted against an installment.
type MakePaymentInput struct {
	InstallmentID string
	Amount        float64
	UserID        string
}

// PaymentResult reports the outcome of a payment attempt. A short payment
// is a declined result, not an error: nothing is mutated and Settled is
// false.
type PaymentResult struct {
	Settled    bool
	Message    string
	LoanClosed bool
}

// InstallmentView is the read model for a single installment.
type InstallmentView struct {
	ID            string
	LoanID        string
	Amount        float64
	DueDate       time.Time
	PaymentStatus string
}

// PaymentService defines use-case operations for payment settlement.
type PaymentService interface {
	MakePayment(ctx context.Context, input MakePaymentInput) (*PaymentResult, error)
	NextPendingInstallment(ctx context.Context, userID string) (*InstallmentView, error)
}
