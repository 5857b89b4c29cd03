package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/microloans/loan-system/internal/core/ports"
)

// LoanHandler handles HTTP requests for loan operations.
type LoanHandler struct {
	service ports.LoanService
}

func NewLoanHandler(service ports.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// Create handles POST /loans/create.
//
// @Summary      Apply for a loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createLoanRequest  true  "Loan application"
// @Success      201   {object}  createLoanResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /loans/create [post]
func (h *LoanHandler) Create(c echo.Context) error {
	var req createLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.CreateLoan(c.Request().Context(), ports.CreateLoanInput{
		Amount: req.Amount,
		Terms:  req.Terms,
		UserID: userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createLoanResponse{
		Message: "Loan was created. Waiting for approval.",
		ID:      result.ID,
		Status:  result.Status,
		Created: result.StartDate.UTC(),
	})
}

// List handles GET /loans/.
//
// @Summary      List loans
// @Description  Admins see every loan; borrowers only their own.
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by loan status"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listLoansResponse
// @Failure      401     {object}  errorResponse
// @Router       /loans/ [get]
func (h *LoanHandler) List(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListLoans(c.Request().Context(), ports.ListLoansInput{
		Role:   role,
		UserID: userID,
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListLoansResponse(result))
}

// Decide handles POST /loans/decision.
//
// @Summary      Approve or reject a pending loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      decideLoanRequest  true  "Loan decision"
// @Success      200   {object}  decideLoanResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /loans/decision [post]
func (h *LoanHandler) Decide(c echo.Context) error {
	var req decideLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.DecideLoan(c.Request().Context(), ports.DecideLoanInput{
		LoanID:   req.ID,
		Decision: req.Decision,
		Role:     role,
		ActorID:  userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, decideLoanResponse{
		Message:      "Loan status updated successfully.",
		Status:       result.Status,
		Installments: result.Installments,
	})
}

func toListLoansResponse(r *ports.ListLoansResult) listLoansResponse {
	items := make([]loanSummaryResponse, len(r.Items))
	for i, l := range r.Items {
		items[i] = loanSummaryResponse{
			ID:        l.ID,
			Amount:    l.Amount,
			Terms:     l.Terms,
			Status:    l.Status,
			StartDate: l.StartDate.UTC(),
			UserID:    l.UserID,
		}
	}
	return listLoansResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}
