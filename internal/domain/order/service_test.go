// internal/domain/order/service_test.go
package order

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/clinic-store-backend/internal/config"
	"github.com/your-org/clinic-store-backend/internal/domain/cart"
	"github.com/your-org/clinic-store-backend/internal/domain/payment"
	"github.com/your-org/clinic-store-backend/internal/domain/product"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"github.com/your-org/clinic-store-backend/internal/pkg/slug"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubGateway stands in for Razorpay so order flows can be exercised
// against a real database without network calls.
type stubGateway struct {
	intents        int
	intentErr      error
	validSignature string
	refundCalls    int
	refundResult   payment.RefundResult
}

func (g *stubGateway) CreateIntent(_ context.Context, req *payment.IntentRequest) (*payment.Intent, error) {
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	g.intents++
	return &payment.Intent{
		ID:       fmt.Sprintf("order_stub_%d", g.intents),
		Amount:   req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (g *stubGateway) VerifySignature(_, _, signature string) bool {
	return signature == g.validSignature
}

func (g *stubGateway) Refund(_ context.Context, _ string, _ decimal.Decimal) payment.RefundResult {
	g.refundCalls++
	return g.refundResult
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&product.Product{}, &product.StockMovement{},
		&cart.Cart{}, &cart.CartItem{},
		&Order{}, &OrderItem{}, &ShippingDetail{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{
			Currency:           "INR",
			HomeDeliveryCharge: decimal.RequireFromString("60.00"),
			PickupCharge:       decimal.Zero,
		},
		Razorpay: config.RazorpayConfig{KeyID: "rzp_test_key"},
	}
}

func newTestService(t *testing.T, gw payment.Gateway) (*Service, *gorm.DB, *cart.Service) {
	t.Helper()
	db := openTestDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := testConfig()
	products := product.NewService(db, cfg, nil, logger)
	carts := cart.NewService(db, logger)
	return NewService(db, cfg, carts, products, gw, logger), db, carts
}

func seedProduct(t *testing.T, db *gorm.DB, itemID uint, name string, stock int, digital bool) *product.Product {
	t.Helper()
	p := product.Product{
		ItemType:   "medicine",
		ItemID:     itemID,
		Name:       name,
		Slug:       slug.Make(name),
		UnitPrice:  decimal.RequireFromString("120.00"),
		Discount:   decimal.RequireFromString("10"),
		NetPrice:   decimal.RequireFromString("108.00"),
		Stock:      stock,
		TrackStock: true,
		IsDigital:  digital,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func fillCart(t *testing.T, carts *cart.Service, userID, productID uint, qty int) {
	t.Helper()
	_, err := carts.AddItem(userID, &cart.AddItemRequest{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
}

func placeOrder(t *testing.T, svc *Service, userID uint, paymentMethod string) *Order {
	t.Helper()
	o, err := svc.PlaceOrder(context.Background(), userID, &PlaceOrderRequest{
		PaymentMethod:  paymentMethod,
		DeliveryMethod: DeliveryPickup,
	})
	require.NoError(t, err)
	return o
}

func payOrder(t *testing.T, svc *Service, gw *stubGateway, o *Order, userID uint) *Order {
	t.Helper()
	gw.validSignature = "sig-ok"
	paid, err := svc.VerifyPayment(o.ID, userID, &VerifyPaymentRequest{
		GatewayOrderID:   o.GatewayOrderID,
		GatewayPaymentID: "pay_stub_1",
		Signature:        "sig-ok",
	})
	require.NoError(t, err)
	return paid
}

func reloadOrder(t *testing.T, db *gorm.DB, id uint) *Order {
	t.Helper()
	var o Order
	require.NoError(t, db.Preload("Items").First(&o, id).Error)
	return &o
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func TestPlaceOrderConsumesStockAndDeletesCart(t *testing.T) {
	svc, db, carts := newTestService(t, &stubGateway{})
	p := seedProduct(t, db, 1, "Arnica 30C", 3, false)
	fillCart(t, carts, 7, p.ID, 3)

	before, err := carts.GetOrCreateCart(7)
	require.NoError(t, err)

	placed := placeOrder(t, svc, 7, PaymentMethodCOD)

	assert.Equal(t, StatusProcessing, placed.Status)
	assert.Equal(t, PaymentPending, placed.PaymentStatus)
	assert.Equal(t, "324.00", placed.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", placed.DeliveryCharge.StringFixed(2))
	assert.Equal(t, "324.00", placed.Total.StringFixed(2))
	require.Len(t, placed.Items, 1)
	assert.Equal(t, "108.00", placed.Items[0].UnitPrice.StringFixed(2))

	assert.Equal(t, 0, productStock(t, db, p.ID))

	var movement product.StockMovement
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&movement).Error)
	assert.Equal(t, -3, movement.Quantity)
	assert.Equal(t, product.MovementReasonOrderPlaced, movement.Reason)

	// The cart was consumed by the placement and a fresh empty one takes
	// its place.
	err = db.First(&cart.Cart{}, "id = ?", before.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	after, err := carts.GetOrCreateCart(7)
	require.NoError(t, err)
	assert.NotEqual(t, before.ID, after.ID)
	assert.Empty(t, after.Items)
}

func TestPlaceOrderHomeDeliveryNeedsShippingAndCharges(t *testing.T) {
	svc, db, carts := newTestService(t, &stubGateway{})
	p := seedProduct(t, db, 1, "Arnica 30C", 5, false)
	fillCart(t, carts, 7, p.ID, 1)

	_, err := svc.PlaceOrder(context.Background(), 7, &PlaceOrderRequest{
		PaymentMethod:  PaymentMethodCOD,
		DeliveryMethod: DeliveryHome,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	placed, err := svc.PlaceOrder(context.Background(), 7, &PlaceOrderRequest{
		PaymentMethod:  PaymentMethodCOD,
		DeliveryMethod: DeliveryHome,
		Shipping: &ShippingRequest{
			FullName:     "Asha Rao",
			Phone:        "9876500000",
			AddressLine1: "12 Lake View Road",
			City:         "Chennai",
			State:        "TN",
			PostalCode:   "600001",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "60.00", placed.DeliveryCharge.StringFixed(2))
	assert.Equal(t, "168.00", placed.Total.StringFixed(2))
	require.NotNil(t, placed.Shipping)
	assert.Equal(t, "Asha Rao", placed.Shipping.FullName)
}

func TestPlaceOrderInsufficientStockRollsBackEverything(t *testing.T) {
	svc, db, carts := newTestService(t, &stubGateway{})
	a := seedProduct(t, db, 1, "Arnica 30C", 5, false)
	b := seedProduct(t, db, 2, "Belladonna 200C", 1, false)
	fillCart(t, carts, 7, a.ID, 2)
	fillCart(t, carts, 7, b.ID, 1)

	// Stock for B disappears behind the cart's back.
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", b.ID).Update("stock", 0).Error)

	_, err := svc.PlaceOrder(context.Background(), 7, &PlaceOrderRequest{
		PaymentMethod:  PaymentMethodCOD,
		DeliveryMethod: DeliveryPickup,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))

	// All or nothing: A's consumption rolled back, cart untouched, no
	// order rows and no stock movements.
	assert.Equal(t, 5, productStock(t, db, a.ID))

	current, err := carts.GetOrCreateCart(7)
	require.NoError(t, err)
	assert.Len(t, current.Items, 2)

	var orders, movements int64
	require.NoError(t, db.Model(&Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&product.StockMovement{}).Count(&movements).Error)
	assert.Zero(t, orders)
	assert.Zero(t, movements)
}

func TestPlaceOrderGatewayFailureCancelsAndRestoresStock(t *testing.T) {
	gw := &stubGateway{intentErr: apperror.New(apperror.KindGateway, "gateway unreachable")}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 2, false)
	fillCart(t, carts, 7, p.ID, 2)

	_, err := svc.PlaceOrder(context.Background(), 7, &PlaceOrderRequest{
		PaymentMethod:  PaymentMethodOnline,
		DeliveryMethod: DeliveryPickup,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindGateway))

	var o Order
	require.NoError(t, db.First(&o).Error)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, PaymentUnsuccessful, o.PaymentStatus)
	assert.NotNil(t, o.CancelledAt)

	assert.Equal(t, 2, productStock(t, db, p.ID))
}

func TestCancelOrderWithoutRefundForUnpaidOrder(t *testing.T) {
	gw := &stubGateway{}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 3, false)
	fillCart(t, carts, 7, p.ID, 3)
	placed := placeOrder(t, svc, 7, PaymentMethodCOD)

	cancelled, err := svc.CancelOrder(context.Background(), placed.ID, 7)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, PaymentUnsuccessful, cancelled.PaymentStatus)
	assert.Equal(t, RefundNone, cancelled.RefundStatus)
	assert.Zero(t, gw.refundCalls)
	assert.Equal(t, 3, productStock(t, db, p.ID))
}

func TestCancelOrderRefundsPaidOnlineOrder(t *testing.T) {
	gw := &stubGateway{refundResult: payment.RefundResult{Success: true, RefundID: "rfnd_1"}}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 2, false)
	fillCart(t, carts, 7, p.ID, 2)
	placed := placeOrder(t, svc, 7, PaymentMethodOnline)
	payOrder(t, svc, gw, placed, 7)

	cancelled, err := svc.CancelOrder(context.Background(), placed.ID, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.refundCalls)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, PaymentRefunded, cancelled.PaymentStatus)
	assert.Equal(t, RefundSuccessful, cancelled.RefundStatus)
	assert.Equal(t, "rfnd_1", cancelled.GatewayRefundID)
	assert.Equal(t, 2, productStock(t, db, p.ID))
}

func TestCancelOrderRefundFailureLeavesOrderRetryable(t *testing.T) {
	gw := &stubGateway{refundResult: payment.RefundResult{Error: "insufficient balance"}}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 2, false)
	fillCart(t, carts, 7, p.ID, 2)
	placed := placeOrder(t, svc, 7, PaymentMethodOnline)
	payOrder(t, svc, gw, placed, 7)

	_, err := svc.CancelOrder(context.Background(), placed.ID, 7)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindGateway))
	assert.Equal(t, 1, gw.refundCalls)

	// The order stays in processing with the failure recorded; stock is
	// only restored when the cancellation actually goes through.
	o := reloadOrder(t, db, placed.ID)
	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, PaymentSuccessful, o.PaymentStatus)
	assert.Equal(t, RefundFailed, o.RefundStatus)
	assert.Equal(t, 0, productStock(t, db, p.ID))

	// A later attempt succeeds once the gateway recovers.
	gw.refundResult = payment.RefundResult{Success: true, RefundID: "rfnd_2"}
	cancelled, err := svc.CancelOrder(context.Background(), placed.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.refundCalls)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 2, productStock(t, db, p.ID))
}

func TestCancelOrderRefusesWhileRefundInFlight(t *testing.T) {
	gw := &stubGateway{refundResult: payment.RefundResult{Success: true, RefundID: "rfnd_1"}}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 2, false)
	fillCart(t, carts, 7, p.ID, 2)
	placed := placeOrder(t, svc, 7, PaymentMethodOnline)
	payOrder(t, svc, gw, placed, 7)

	// Another cancellation already claimed the refund.
	require.NoError(t, db.Model(&Order{}).Where("id = ?", placed.ID).
		Update("refund_status", RefundPending).Error)

	_, err := svc.CancelOrder(context.Background(), placed.ID, 7)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict))
	assert.Zero(t, gw.refundCalls)
}

func TestTransitionRejectsStaleState(t *testing.T) {
	gw := &stubGateway{}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 1, false)
	fillCart(t, carts, 7, p.ID, 1)
	placed := placeOrder(t, svc, 7, PaymentMethodCOD)

	stale := reloadOrder(t, db, placed.ID)

	// Another request moves the order on.
	require.NoError(t, db.Model(&Order{}).Where("id = ?", placed.ID).
		Update("status", StatusDispatched).Error)

	err := svc.transition(db, stale, map[string]interface{}{"status": StatusCancelled})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict))

	// The concurrent transition wins and is not overwritten.
	assert.Equal(t, StatusDispatched, reloadOrder(t, db, placed.ID).Status)
}

func TestVerifyPaymentIsOneShot(t *testing.T) {
	gw := &stubGateway{}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 1, false)
	fillCart(t, carts, 7, p.ID, 1)
	placed := placeOrder(t, svc, 7, PaymentMethodOnline)

	paid := payOrder(t, svc, gw, placed, 7)
	assert.Equal(t, PaymentSuccessful, paid.PaymentStatus)
	assert.Equal(t, StatusProcessing, paid.Status)

	_, err := svc.VerifyPayment(placed.ID, 7, &VerifyPaymentRequest{
		GatewayOrderID:   placed.GatewayOrderID,
		GatewayPaymentID: "pay_stub_1",
		Signature:        "sig-ok",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict))
	assert.Equal(t, 0, productStock(t, db, p.ID))
}

func TestVerifyPaymentBadSignatureMarksUnsuccessful(t *testing.T) {
	gw := &stubGateway{validSignature: "sig-ok"}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 1, false)
	fillCart(t, carts, 7, p.ID, 1)
	placed := placeOrder(t, svc, 7, PaymentMethodOnline)

	_, err := svc.VerifyPayment(placed.ID, 7, &VerifyPaymentRequest{
		GatewayOrderID:   placed.GatewayOrderID,
		GatewayPaymentID: "pay_stub_1",
		Signature:        "sig-forged",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	o := reloadOrder(t, db, placed.ID)
	assert.Equal(t, PaymentUnsuccessful, o.PaymentStatus)
	assert.Equal(t, StatusProcessing, o.Status)
}

func TestVerifyPaymentCompletesDigitalOrders(t *testing.T) {
	gw := &stubGateway{}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Consultation Recording", 1, true)
	fillCart(t, carts, 7, p.ID, 1)
	placed := placeOrder(t, svc, 7, PaymentMethodOnline)

	paid := payOrder(t, svc, gw, placed, 7)
	assert.Equal(t, StatusCompleted, paid.Status)
	require.NotNil(t, paid.DeliveredAt)
}

func TestDispatchRefusedWhileRefundInFlight(t *testing.T) {
	gw := &stubGateway{}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 1, false)
	fillCart(t, carts, 7, p.ID, 1)
	placed := placeOrder(t, svc, 7, PaymentMethodOnline)
	payOrder(t, svc, gw, placed, 7)

	require.NoError(t, db.Model(&Order{}).Where("id = ?", placed.ID).
		Update("refund_status", RefundPending).Error)

	_, err := svc.Dispatch(placed.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict))
	assert.Equal(t, StatusProcessing, reloadOrder(t, db, placed.ID).Status)
}

func TestRetryPaymentReplacesGatewayOrder(t *testing.T) {
	gw := &stubGateway{}
	svc, db, carts := newTestService(t, gw)
	p := seedProduct(t, db, 1, "Arnica 30C", 1, false)
	fillCart(t, carts, 7, p.ID, 1)
	placed := placeOrder(t, svc, 7, PaymentMethodOnline)

	resp, err := svc.RetryPayment(context.Background(), placed.ID, 7)
	require.NoError(t, err)
	assert.NotEqual(t, placed.GatewayOrderID, resp.GatewayOrderID)
	assert.Equal(t, "rzp_test_key", resp.Key)
	assert.Equal(t, "108.00", resp.Amount.StringFixed(2))

	assert.Equal(t, resp.GatewayOrderID, reloadOrder(t, db, placed.ID).GatewayOrderID)
}
