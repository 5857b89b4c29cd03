package handler

import "time"

type makePaymentRequest struct {
	PaymentID string  `json:"payment_id" validate:"required"`
	Amount    float64 `json:"amount"     validate:"required,gt=0"`
}

type makePaymentResponse struct {
	Message    string `json:"message"`
	Settled    bool   `json:"settled"`
	LoanClosed bool   `json:"loan_closed,omitempty"`
}

type installmentResponse struct {
	ID            string    `json:"id"`
	LoanID        string    `json:"loan_id"`
	Amount        float64   `json:"amount"`
	DueDate       time.Time `json:"due_date"`
	PaymentStatus string    `json:"payment_status"`
}
