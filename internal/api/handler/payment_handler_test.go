package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/microloans/loan-system/internal/core/domain"
	"github.com/microloans/loan-system/internal/core/ports"
)

type stubPaymentService struct {
	payResult  *ports.PaymentResult
	payErr     error
	nextResult *ports.InstallmentView
	nextErr    error

	gotPay     ports.MakePaymentInput
	gotNextFor string
}

func (s *stubPaymentService) MakePayment(_ context.Context, input ports.MakePaymentInput) (*ports.PaymentResult, error) {
	s.gotPay = input
	return s.payResult, s.payErr
}

func (s *stubPaymentService) NextPendingInstallment(_ context.Context, userID string) (*ports.InstallmentView, error) {
	s.gotNextFor = userID
	return s.nextResult, s.nextErr
}

func TestPaymentHandler_MakeSettled(t *testing.T) {
	e := newTestEcho()
	svc := &stubPaymentService{
		payResult: &ports.PaymentResult{
			Settled: true,
			Message: "Payment successful. Payment marked as Paid.",
		},
	}
	h := NewPaymentHandler(svc)

	req := jsonRequest(http.MethodPost, "/payments/make-payment/", `{"payment_id":"inst_1","amount":166.67}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleBorrower, "user_1")

	if err := h.Make(c); err != nil {
		t.Fatalf("make: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Payment successful. Payment marked as Paid.") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if svc.gotPay.InstallmentID != "inst_1" || svc.gotPay.UserID != "user_1" {
		t.Fatalf("unexpected input: %+v", svc.gotPay)
	}
}

func TestPaymentHandler_MakeDeclined(t *testing.T) {
	e := newTestEcho()
	svc := &stubPaymentService{
		payResult: &ports.PaymentResult{
			Settled: false,
			Message: "Transaction failed. Payment amount is less than the due amount.",
		},
	}
	h := NewPaymentHandler(svc)

	req := jsonRequest(http.MethodPost, "/payments/make-payment/", `{"payment_id":"inst_1","amount":10}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleBorrower, "user_1")

	if err := h.Make(c); err != nil {
		t.Fatalf("make: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"settled":false`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestPaymentHandler_MakeValidation(t *testing.T) {
	e := newTestEcho()
	h := NewPaymentHandler(&stubPaymentService{})

	cases := []struct {
		name string
		body string
	}{
		{"missing payment id", `{"amount":100}`},
		{"zero amount", `{"payment_id":"inst_1","amount":0}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := jsonRequest(http.MethodPost, "/payments/make-payment/", tc.body)
			rec := httptest.NewRecorder()
			c := authedContext(e, req, rec, domain.RoleBorrower, "user_1")

			err := h.Make(c)
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %v", err)
			}
		})
	}
}

func TestPaymentHandler_MakeNotFound(t *testing.T) {
	e := newTestEcho()
	h := NewPaymentHandler(&stubPaymentService{payErr: domain.ErrInstallmentNotFound})

	req := jsonRequest(http.MethodPost, "/payments/make-payment/", `{"payment_id":"other","amount":100}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleBorrower, "user_1")

	err := h.Make(c)
	if !errors.Is(err, domain.ErrInstallmentNotFound) {
		t.Fatalf("expected ErrInstallmentNotFound, got %v", err)
	}
}

func TestPaymentHandler_NextDue(t *testing.T) {
	e := newTestEcho()
	due := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	svc := &stubPaymentService{
		nextResult: &ports.InstallmentView{
			ID:            "inst_1",
			LoanID:        "loan_1",
			Amount:        166.67,
			DueDate:       due,
			PaymentStatus: string(domain.InstallmentPending),
		},
	}
	h := NewPaymentHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/payments/pending-earliest-due-date", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleBorrower, "user_1")

	if err := h.NextDue(c); err != nil {
		t.Fatalf("next due: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotNextFor != "user_1" {
		t.Fatalf("user not forwarded: %q", svc.gotNextFor)
	}
	if !strings.Contains(rec.Body.String(), `"loan_id":"loan_1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestPaymentHandler_NextDueNone(t *testing.T) {
	e := newTestEcho()
	h := NewPaymentHandler(&stubPaymentService{nextErr: domain.ErrInstallmentNotFound})

	req := httptest.NewRequest(http.MethodGet, "/payments/pending-earliest-due-date", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleBorrower, "user_1")

	err := h.NextDue(c)
	if !errors.Is(err, domain.ErrInstallmentNotFound) {
		t.Fatalf("expected ErrInstallmentNotFound, got %v", err)
	}
}
