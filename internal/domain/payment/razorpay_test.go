// internal/domain/payment/razorpay_test.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/clinic-store-backend/internal/config"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
)

func newTestGateway(t *testing.T, baseURL string) *RazorpayGateway {
	t.Helper()
	cfg := &config.Config{
		Razorpay: config.RazorpayConfig{
			KeyID:     "rzp_test_key",
			KeySecret: "test_secret",
			BaseURL:   baseURL,
			Timeout:   5 * time.Second,
		},
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewRazorpayGateway(cfg, logger)
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	g := newTestGateway(t, "http://unused")

	valid := sign("test_secret", "order_abc", "pay_xyz")
	assert.True(t, g.VerifySignature("order_abc", "pay_xyz", valid))
	assert.False(t, g.VerifySignature("order_abc", "pay_xyz", valid+"0"))
	assert.False(t, g.VerifySignature("order_abc", "pay_other", valid))
	assert.False(t, g.VerifySignature("order_abc", "pay_xyz", ""))
}

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "test_secret", pass)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(16059), req["amount"]) // 160.59 in paise
		assert.Equal(t, "INR", req["currency"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_test123",
			"amount":   16059,
			"currency": "INR",
			"receipt":  req["receipt"],
			"status":   "created",
		})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	intent, err := g.CreateIntent(context.Background(), &IntentRequest{
		Amount:   decimal.RequireFromString("160.59"),
		Currency: "INR",
		Receipt:  "ORD-2026-ABCD1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_test123", intent.ID)
	assert.Equal(t, int64(16059), intent.Amount)
	assert.Equal(t, "created", intent.Status)
}

func TestCreateIntentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":        "BAD_REQUEST_ERROR",
				"description": "amount must be at least 100",
			},
		})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	_, err := g.CreateIntent(context.Background(), &IntentRequest{
		Amount:   decimal.RequireFromString("0.50"),
		Currency: "INR",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindGateway))
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestCreateIntentUnreachable(t *testing.T) {
	g := newTestGateway(t, "http://127.0.0.1:1")
	_, err := g.CreateIntent(context.Background(), &IntentRequest{
		Amount:   decimal.NewFromInt(100),
		Currency: "INR",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindGateway))
}

func TestRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/pay_abc/refund", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "rfnd_001",
			"status": "processed",
		})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	result := g.Refund(context.Background(), "pay_abc", decimal.RequireFromString("160.59"))
	assert.True(t, result.Success)
	assert.Equal(t, "rfnd_001", result.RefundID)
	assert.Empty(t, result.Error)
}

func TestRefundFailureIsResultNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"description": "payment already refunded",
			},
		})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	result := g.Refund(context.Background(), "pay_abc", decimal.NewFromInt(100))
	assert.False(t, result.Success)
	assert.Equal(t, "payment already refunded", result.Error)

	// Transport failure is also a result, never a panic or error value.
	down := newTestGateway(t, "http://127.0.0.1:1")
	result = down.Refund(context.Background(), "pay_abc", decimal.NewFromInt(100))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}
