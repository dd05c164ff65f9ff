package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brocante/apiserver/config"
)

func testClient(serverURL string) *Client {
	return NewClient(config.PaymentConfig{
		SecretKey:  "sk_test_123",
		APIBaseURL: serverURL,
		Currency:   "eur",
	}, http.DefaultClient)
}

func TestCreateCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/charges", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "sk_test_123", user)
		assert.Empty(t, pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1550", r.PostFormValue("amount"))
		assert.Equal(t, "eur", r.PostFormValue("currency"))
		assert.Equal(t, "Blue Shirt purchased by sasha (user 7)", r.PostFormValue("description"))
		assert.Equal(t, "tok_visa", r.PostFormValue("source"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ch_1","amount":1550,"currency":"eur","status":"succeeded","paid":true}`))
	}))
	defer server.Close()

	charge, err := testClient(server.URL).CreateCharge(context.Background(), ChargeRequest{
		AmountMinorUnits: 1550,
		Description:      "Blue Shirt purchased by sasha (user 7)",
		Source:           "tok_visa",
	})
	require.NoError(t, err)
	assert.Equal(t, "ch_1", charge.ID)
	assert.Equal(t, int64(1550), charge.Amount)
	assert.Equal(t, "succeeded", charge.Status)
	assert.True(t, charge.Paid)
}

func TestCreateCharge_Declined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined.","type":"card_error"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateCharge(context.Background(), ChargeRequest{
		AmountMinorUnits: 1550,
		Source:           "tok_chargeDeclined",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestCreateCharge_OpaqueFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateCharge(context.Background(), ChargeRequest{
		AmountMinorUnits: 100,
		Source:           "tok_visa",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 500")
}
