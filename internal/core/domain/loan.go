package domain

import (
	"errors"
	"time"
)

// LoanStatus represents the lifecycle state of a loan.
type LoanStatus string

const (
	StatusWaitingApproval LoanStatus = "Waiting for approval"
	StatusApproved        LoanStatus = "Approved"
	StatusRejected        LoanStatus = "Rejected"
	StatusPaid            LoanStatus = "Paid"
)

// MaxLoanTerms is the largest installment count a loan may be split into.
const MaxLoanTerms = 12

// Decision is an admin verdict on a pending loan.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

var ErrLoanNotFound = errors.New("loan not found")
var ErrLoanAlreadyDecided = errors.New("loan already decided")
var ErrInvalidLoanTerms = errors.New("loan terms must be between 1 and 12")
var ErrInvalidLoanAmount = errors.New("loan amount must be positive")
var ErrInvalidDecision = errors.New("decision must be approved or rejected")
var ErrForbidden = errors.New("access forbidden")

// Loan is the core aggregate: an amount borrowed by a user, split into
// Terms weekly installments once approved.
type Loan struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Amount    int64      `json:"amount" bson:"amount"`
	Terms     int        `json:"terms" bson:"terms"`
	StartDate time.Time  `json:"start_date" bson:"start_date"`
	Status    LoanStatus `json:"status" bson:"status"`
	UserID    string     `json:"user_id" bson:"user_id"`
}

// Decidable reports whether an admin decision may still be applied.
// Only loans that have never been decided qualify; this is the
// application-level guard against regenerating a payment schedule.
func (l *Loan) Decidable() bool {
	return l.Status == StatusWaitingApproval
}
