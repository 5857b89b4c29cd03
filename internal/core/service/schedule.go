package service

import (
	"math"
	"time"

	"github.com/microloans/loan-system/internal/core/domain"
)

// installmentInterval is the cadence between consecutive due dates.
const installmentInterval = 7 * 24 * time.Hour

// BuildSchedule expands an approved loan into its payment schedule: exactly
// loan.Terms pending installments, due weekly starting seven days after the
// approval instant.
//
// Each installment is the loan amount divided by the term count, rounded to
// two decimals; the last installment absorbs the rounding remainder so the
// schedule sums to the loan amount exactly.
func BuildSchedule(loan *domain.Loan, approvedAt time.Time) []*domain.Installment {
	per := roundCents(float64(loan.Amount) / float64(loan.Terms))

	installments := make([]*domain.Installment, loan.Terms)
	allocated := 0.0
	for i := range installments {
		amount := per
		if i == loan.Terms-1 {
			amount = roundCents(float64(loan.Amount) - allocated)
		}
		allocated += amount

		installments[i] = &domain.Installment{
			LoanID:        loan.ID,
			UserID:        loan.UserID,
			Amount:        amount,
			DueDate:       approvedAt.Add(time.Duration(i+1) * installmentInterval),
			PaymentStatus: domain.InstallmentPending,
		}
	}
	return installments
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
