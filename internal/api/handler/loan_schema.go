package handler

import "time"

type createLoanRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
	Terms  int   `json:"terms"  validate:"required,min=1,max=12"`
}

type createLoanResponse struct {
	Message string    `json:"message"`
	ID      string    `json:"id"`
	Status  string    `json:"status"`
	Created time.Time `json:"created_at"`
}

type decideLoanRequest struct {
	ID       string `json:"id"       validate:"required"`
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}

type decideLoanResponse struct {
	Message      string `json:"message"`
	Status       string `json:"status"`
	Installments int    `json:"installments,omitempty"`
}

// loanSummaryResponse is the item used in list responses.
type loanSummaryResponse struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Terms     int       `json:"terms"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	UserID    string    `json:"user_id"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listLoansResponse struct {
	Data       []loanSummaryResponse `json:"data"`
	Pagination paginationResponse    `json:"pagination"`
}
