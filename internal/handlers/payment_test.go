package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brocante/apiserver/internal/payment"
)

type stubProcessor struct {
	charge payment.Charge
	err    error
	last   payment.ChargeRequest
	calls  int
}

func (s *stubProcessor) CreateCharge(_ context.Context, req payment.ChargeRequest) (payment.Charge, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return payment.Charge{}, s.err
	}
	return s.charge, nil
}

func paymentRouter(processor ChargeProcessor) *chi.Mux {
	r := chi.NewRouter()
	PaymentRouter(r, processor)
	return r
}

func TestChargeEndpoint(t *testing.T) {
	processor := &stubProcessor{
		charge: payment.Charge{
			ID:       "ch_1",
			Amount:   1550,
			Currency: "eur",
			Status:   "succeeded",
			Paid:     true,
		},
	}
	router := paymentRouter(processor)

	body := `{"payerId":7,"payerUsername":"sasha","itemName":"Blue Shirt","itemPriceInMinorUnits":1550,"paymentToken":"tok_visa"}`
	req := httptest.NewRequest(http.MethodPost, "/payment", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var charge payment.Charge
	require.NoError(t, decodeBody(rec, &charge))
	assert.Equal(t, "ch_1", charge.ID)
	assert.True(t, charge.Paid)

	assert.Equal(t, 1, processor.calls)
	assert.Equal(t, int64(1550), processor.last.AmountMinorUnits)
	assert.Equal(t, "tok_visa", processor.last.Source)
	assert.Equal(t, "Blue Shirt purchased by sasha (user 7)", processor.last.Description)
}

func TestChargeEndpoint_ProcessorFault(t *testing.T) {
	processor := &stubProcessor{err: errors.New("Your card was declined.")}
	router := paymentRouter(processor)

	body := `{"payerId":7,"payerUsername":"sasha","itemName":"Blue Shirt","itemPriceInMinorUnits":1550,"paymentToken":"tok_chargeDeclined"}`
	req := httptest.NewRequest(http.MethodPost, "/payment", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, decodeBody(rec, &resp))
	assert.Equal(t, "Your card was declined.", resp.Error)
}

func TestChargeEndpoint_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{`, "invalid request"},
		{"missing token", `{"itemPriceInMinorUnits":1550}`, "payment token is required"},
		{"zero amount", `{"paymentToken":"tok_visa","itemPriceInMinorUnits":0}`, "invalid amount"},
		{"negative amount", `{"paymentToken":"tok_visa","itemPriceInMinorUnits":-5}`, "invalid amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &stubProcessor{}
			router := paymentRouter(processor)

			req := httptest.NewRequest(http.MethodPost, "/payment", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, decodeBody(rec, &resp))
			assert.Equal(t, tt.want, resp.Error)
			assert.Zero(t, processor.calls)
		})
	}
}
