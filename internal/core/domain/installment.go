package domain

import (
	"errors"
	"time"
)

// InstallmentStatus is the settlement state of a single installment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "Pending"
	InstallmentPaid    InstallmentStatus = "Paid"
)

var ErrInstallmentNotFound = errors.New("installment not found")

// Installment is one scheduled partial payment obligation derived from a
// loan. Exactly loan.Terms installments are created when the loan is
// approved, one week apart, and each is settled independently.
type Installment struct {
	ID            string            `json:"id" bson:"_id,omitempty"`
	LoanID        string            `json:"loan_id" bson:"loan_id"`
	UserID        string            `json:"user_id" bson:"user_id"`
	Amount        float64           `json:"amount" bson:"amount"`
	DueDate       time.Time         `json:"due_date" bson:"due_date"`
	PaymentStatus InstallmentStatus `json:"payment_status" bson:"payment_status"`
}

// PaymentEventKind labels an entry in the payment audit trail.
type PaymentEventKind string

const (
	EventLoanCreated PaymentEventKind = "loan_created"
	EventLoanDecided PaymentEventKind = "loan_decided"
	EventPaymentMade PaymentEventKind = "payment_made"
	EventLoanClosed  PaymentEventKind = "loan_closed"
)

// PaymentEvent is an append-only audit record of a lifecycle action.
type PaymentEvent struct {
	Kind          PaymentEventKind
	LoanID        string
	InstallmentID string
	UserID        string
	Amount        float64
	Timestamp     time.Time
}
