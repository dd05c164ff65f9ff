// Package payment talks to the external card processor. The processor
// executes a monetary charge given a client-supplied payment token; the
// backend never sees card numbers.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/brocante/apiserver/config"
)

// Client issues charge requests against the processor's REST API.
type Client struct {
	cfg    config.PaymentConfig
	client *http.Client
}

// NewClient constructs a processor client from config. httpClient must
// carry its own timeout; the processor enforces none on our behalf.
func NewClient(cfg config.PaymentConfig, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, client: httpClient}
}

// ChargeRequest describes a single charge to execute.
type ChargeRequest struct {
	// AmountMinorUnits is the charge amount in the currency's minor
	// units (e.g. cents).
	AmountMinorUnits int64

	// Description is shown on the processor dashboard and statements.
	Description string

	// Source is the opaque single-use payment token supplied by the
	// paying client.
	Source string
}

// Charge is the processor's view of an executed charge.
type Charge struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Paid        bool   `json:"paid"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateCharge executes the charge and returns the processor response.
// The currency is fixed by configuration.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (Charge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountMinorUnits, 10))
	form.Set("currency", c.cfg.Currency)
	form.Set("description", req.Description)
	form.Set("source", req.Source)

	endpoint := strings.TrimRight(c.cfg.APIBaseURL, "/") + "/v1/charges"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Charge{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.cfg.SecretKey, "")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return Charge{}, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var body errorResponse
		if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error.Message != "" {
			return Charge{}, fmt.Errorf("payment processor: %s", body.Error.Message)
		}
		return Charge{}, fmt.Errorf("payment processor http %d", res.StatusCode)
	}

	var charge Charge
	if err := json.NewDecoder(res.Body).Decode(&charge); err != nil {
		return Charge{}, err
	}
	return charge, nil
}
