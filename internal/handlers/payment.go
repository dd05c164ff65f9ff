package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brocante/apiserver/internal/payment"
)

// ChargeProcessor executes a monetary charge with the external
// processor.
type ChargeProcessor interface {
	CreateCharge(ctx context.Context, req payment.ChargeRequest) (payment.Charge, error)
}

// PaymentHandler forwards charge requests to the card processor.
type PaymentHandler struct {
	processor ChargeProcessor
}

func NewPaymentHandler(processor ChargeProcessor) *PaymentHandler {
	return &PaymentHandler{processor: processor}
}

// PaymentRouter registers the payment route on the given router.
func PaymentRouter(r chi.Router, processor ChargeProcessor) {
	handler := NewPaymentHandler(processor)

	r.Post("/payment", handler.Charge)
}

type paymentRequest struct {
	PayerID               int64  `json:"payerId"`
	PayerUsername         string `json:"payerUsername"`
	ItemName              string `json:"itemName"`
	ItemPriceInMinorUnits int64  `json:"itemPriceInMinorUnits"`
	PaymentToken          string `json:"paymentToken"`
}

// Charge serves POST /payment. Exactly one response is written per
// request: a processor fault ends the request with 400.
func (h *PaymentHandler) Charge(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.PaymentToken == "" {
		writeError(w, http.StatusBadRequest, "payment token is required")
		return
	}
	if req.ItemPriceInMinorUnits <= 0 {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	charge, err := h.processor.CreateCharge(r.Context(), payment.ChargeRequest{
		AmountMinorUnits: req.ItemPriceInMinorUnits,
		Description:      fmt.Sprintf("%s purchased by %s (user %d)", req.ItemName, req.PayerUsername, req.PayerID),
		Source:           req.PaymentToken,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, charge)
}
