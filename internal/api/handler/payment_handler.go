package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/microloans/loan-system/internal/core/ports"
)

// PaymentHandler handles HTTP requests for payment operations.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Make handles POST /payments/make-payment/.
//
// @Summary      Pay an installment
// @Description  Settles the installment when the amount covers the due
// @Description  amount; a short payment is declined without mutation.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      makePaymentRequest  true  "Payment"
// @Success      200   {object}  makePaymentResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /payments/make-payment/ [post]
func (h *PaymentHandler) Make(c echo.Context) error {
	var req makePaymentRequest
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

	result, err := h.service.MakePayment(c.Request().Context(), ports.MakePaymentInput{
		InstallmentID: req.PaymentID,
		Amount:        req.Amount,
		UserID:        userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, makePaymentResponse{
		Message:    result.Message,
		Settled:    result.Settled,
		LoanClosed: result.LoanClosed,
	})
}

// NextDue handles GET /payments/pending-earliest-due-date.
//
// @Summary      Earliest future pending installment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  installmentResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /payments/pending-earliest-due-date [get]
func (h *PaymentHandler) NextDue(c echo.Context) error {
	_, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	inst, err := h.service.NextPendingInstallment(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, installmentResponse{
		ID:            inst.ID,
		LoanID:        inst.LoanID,
		Amount:        inst.Amount,
		DueDate:       inst.DueDate.UTC(),
		PaymentStatus: inst.PaymentStatus,
	})
}
