// internal/domain/payment/razorpay.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/config"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
)

// Gateway is the payment provider surface the order engine depends on.
type Gateway interface {
	CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	Refund(ctx context.Context, gatewayPaymentID string, amount decimal.Decimal) RefundResult
}

// IntentRequest describes the payment to collect.
type IntentRequest struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
}

// Intent is the gateway-side order a client completes payment against.
type Intent struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// RefundResult reports the outcome of a refund attempt. Refund failures
// are data, not errors: callers record the failure and move on.
type RefundResult struct {
	Success  bool
	RefundID string
	Error    string
}

// RazorpayGateway talks to the Razorpay Orders API using HTTP basic auth.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
	logger    *logrus.Logger
}

// NewRazorpayGateway creates a gateway from configuration. BaseURL is
// configurable so tests can point it at a local server.
func NewRazorpayGateway(cfg *config.Config, logger *logrus.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     cfg.Razorpay.KeyID,
		keySecret: cfg.Razorpay.KeySecret,
		baseURL:   cfg.Razorpay.BaseURL,
		client:    &http.Client{Timeout: cfg.Razorpay.Timeout},
		logger:    logger,
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent creates a gateway order for the given amount. Amounts are
// sent in the currency's smallest unit (paise for INR).
func (g *RazorpayGateway) CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error) {
	payload := razorpayOrderRequest{
		Amount:   toSubunits(req.Amount),
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindGateway, "payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindGateway, "failed to read gateway response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gwErr razorpayErrorResponse
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Error.Description != "" {
			return nil, apperror.Newf(apperror.KindGateway,
				"gateway rejected order: %s", gwErr.Error.Description)
		}
		return nil, apperror.Newf(apperror.KindGateway,
			"gateway returned status %d", resp.StatusCode)
	}

	var order razorpayOrderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, apperror.Wrap(apperror.KindGateway, "failed to decode gateway response", err)
	}

	g.logger.WithFields(logrus.Fields{
		"gateway_order_id": order.ID,
		"amount":           order.Amount,
	}).Info("payment intent created")

	return &Intent{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
	}, nil
}

// VerifySignature checks the client-supplied payment signature: an
// HMAC-SHA256 of "<order_id>|<payment_id>" keyed with the API secret.
// Comparison is constant-time.
func (g *RazorpayGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type razorpayRefundRequest struct {
	Amount int64 `json:"amount"`
}

type razorpayRefundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Refund attempts to refund a captured payment. A failed refund is
// returned as an unsuccessful result rather than an error so the caller
// can persist the failure state.
func (g *RazorpayGateway) Refund(ctx context.Context, gatewayPaymentID string, amount decimal.Decimal) RefundResult {
	payload := razorpayRefundRequest{Amount: toSubunits(amount)}
	body, err := json.Marshal(payload)
	if err != nil {
		return RefundResult{Error: fmt.Sprintf("failed to encode refund request: %v", err)}
	}

	url := fmt.Sprintf("%s/payments/%s/refund", g.baseURL, gatewayPaymentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return RefundResult{Error: fmt.Sprintf("failed to build refund request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return RefundResult{Error: fmt.Sprintf("payment gateway unreachable: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return RefundResult{Error: fmt.Sprintf("failed to read gateway response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var gwErr razorpayErrorResponse
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Error.Description != "" {
			return RefundResult{Error: gwErr.Error.Description}
		}
		return RefundResult{Error: fmt.Sprintf("gateway returned status %d", resp.StatusCode)}
	}

	var refund razorpayRefundResponse
	if err := json.Unmarshal(respBody, &refund); err != nil {
		return RefundResult{Error: fmt.Sprintf("failed to decode gateway response: %v", err)}
	}

	g.logger.WithFields(logrus.Fields{
		"gateway_payment_id": gatewayPaymentID,
		"refund_id":          refund.ID,
	}).Info("refund issued")

	return RefundResult{Success: true, RefundID: refund.ID}
}

// toSubunits converts a decimal amount into the currency's smallest unit.
func toSubunits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
