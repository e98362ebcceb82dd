// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/config"
	"github.com/your-org/clinic-store-backend/internal/domain/cart"
	"github.com/your-org/clinic-store-backend/internal/domain/payment"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service drives the order lifecycle: placement, payment verification,
// cancellation with refunds, and fulfilment transitions.
type Service struct {
	db      *gorm.DB
	config  *config.Config
	cartSvc *cart.Service
	stock   StockManager
	gateway payment.Gateway
	logger  *logrus.Logger
}

// StockManager mutates product stock inside order transactions.
// Implemented by the product service.
type StockManager interface {
	ConsumeStock(tx *gorm.DB, productID uint, quantity int) error
	RestoreStock(tx *gorm.DB, productID uint, quantity int) error
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartSvc *cart.Service, stock StockManager, gateway payment.Gateway, logger *logrus.Logger) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		cartSvc: cartSvc,
		stock:   stock,
		gateway: gateway,
		logger:  logger,
	}
}

// ShippingRequest carries the home delivery address
type ShippingRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
}

// PlaceOrderRequest represents order placement data
type PlaceOrderRequest struct {
	PaymentMethod  string           `json:"payment_method" binding:"required"`
	DeliveryMethod string           `json:"delivery_method" binding:"required"`
	Shipping       *ShippingRequest `json:"shipping"`
}

// PlaceOrder converts the user's cart into an order. Stock consumption,
// order rows and cart deletion commit in one transaction; for online
// payment the gateway intent is created after commit, and a gateway
// failure compensates the order (cancel + restore stock) so no order is
// left silently unpayable.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*Order, error) {
	if req.PaymentMethod != PaymentMethodOnline && req.PaymentMethod != PaymentMethodCOD {
		return nil, apperror.Newf(apperror.KindValidation, "unknown payment method %q", req.PaymentMethod)
	}
	if req.DeliveryMethod != DeliveryHome && req.DeliveryMethod != DeliveryPickup {
		return nil, apperror.Newf(apperror.KindValidation, "unknown delivery method %q", req.DeliveryMethod)
	}
	if req.DeliveryMethod == DeliveryHome && req.Shipping == nil {
		return nil, apperror.New(apperror.KindValidation, "shipping details are required for home delivery")
	}

	userCart, err := s.cartSvc.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}
	if len(userCart.Items) == 0 {
		return nil, apperror.New(apperror.KindValidation, "cart is empty")
	}

	deliveryCharge := s.config.Store.PickupCharge
	if req.DeliveryMethod == DeliveryHome {
		deliveryCharge = s.config.Store.HomeDeliveryCharge
	}

	order := Order{
		OrderNumber:    generateOrderNumber(),
		UserID:         userID,
		Status:         StatusProcessing,
		PaymentStatus:  PaymentPending,
		RefundStatus:   RefundNone,
		PaymentMethod:  req.PaymentMethod,
		DeliveryMethod: req.DeliveryMethod,
		DeliveryCharge: deliveryCharge,
		Currency:       s.config.Store.Currency,
		PlacedAt:       time.Now().UTC(),
	}

	subtotal := decimal.Zero
	for i := range userCart.Items {
		ci := &userCart.Items[i]
		lineTotal := ci.LineTotal()
		subtotal = subtotal.Add(lineTotal)
		order.Items = append(order.Items, OrderItem{
			ProductID: ci.ProductID,
			Name:      ci.Product.Name,
			UnitPrice: ci.Product.NetPrice,
			Quantity:  ci.Quantity,
			LineTotal: lineTotal,
			IsDigital: ci.Product.IsDigital,
		})
	}
	order.Subtotal = subtotal
	order.Total = subtotal.Add(deliveryCharge)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range userCart.Items {
			ci := &userCart.Items[i]
			if err := s.stock.ConsumeStock(tx, ci.ProductID, ci.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if req.Shipping != nil {
			shipping := ShippingDetail{
				OrderID:      order.ID,
				FullName:     req.Shipping.FullName,
				Phone:        req.Shipping.Phone,
				AddressLine1: req.Shipping.AddressLine1,
				AddressLine2: req.Shipping.AddressLine2,
				City:         req.Shipping.City,
				State:        req.Shipping.State,
				PostalCode:   req.Shipping.PostalCode,
			}
			if err := tx.Create(&shipping).Error; err != nil {
				return fmt.Errorf("failed to create shipping detail: %w", err)
			}
			order.Shipping = &shipping
		}
		return s.cartSvc.DeleteCartTx(tx, userCart.ID)
	})
	if err != nil {
		return nil, err
	}

	if req.PaymentMethod == PaymentMethodOnline {
		intent, gwErr := s.gateway.CreateIntent(ctx, &payment.IntentRequest{
			Amount:   order.Total,
			Currency: order.Currency,
			Receipt:  order.OrderNumber,
		})
		if gwErr != nil {
			if compErr := s.compensate(&order); compErr != nil {
				s.logger.WithError(compErr).WithField("order_id", order.ID).
					Error("failed to compensate order after gateway failure")
			}
			return nil, gwErr
		}

		if err := s.db.Model(&Order{}).Where("id = ?", order.ID).
			Update("gateway_order_id", intent.ID).Error; err != nil {
			return nil, fmt.Errorf("failed to persist gateway order id: %w", err)
		}
		order.GatewayOrderID = intent.ID
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.Total.String(),
	}).Info("order placed")

	return &order, nil
}

// transition applies updates only while the order's state columns still
// hold the values read alongside the order, the same single guarded
// UPDATE discipline as stock consumption. A concurrent transition makes
// this one fail with RowsAffected == 0 instead of overwriting it.
func (s *Service) transition(tx *gorm.DB, order *Order, updates map[string]interface{}) error {
	result := tx.Model(&Order{}).
		Where("id = ? AND status = ? AND payment_status = ? AND refund_status = ?",
			order.ID, order.Status, order.PaymentStatus, order.RefundStatus).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindStateConflict,
			"order %s was changed by another request", order.OrderNumber)
	}
	return nil
}

// compensate cancels a freshly placed order and restores its stock after
// the payment intent could not be created.
func (s *Service) compensate(order *Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			item := &order.Items[i]
			if err := s.stock.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		return s.transition(tx, order, map[string]interface{}{
			"status":         StatusCancelled,
			"payment_status": PaymentUnsuccessful,
			"cancelled_at":   now,
		})
	})
}

// CancelOrder cancels an order owned by the user. Paid online orders are
// refunded through the gateway first; a failed refund leaves the order in
// processing with refund_status=failed so it can be retried.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID uint) (*Order, error) {
	order, err := s.getOwned(orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, apperror.Newf(apperror.KindStateConflict,
			"order %s cannot be cancelled in status %s", order.OrderNumber, order.Status)
	}
	if order.RefundInFlight() {
		return nil, apperror.Newf(apperror.KindStateConflict,
			"order %s already has a refund in flight", order.OrderNumber)
	}

	paymentStatus := order.PaymentStatus
	refundStatus := order.RefundStatus
	refundID := order.GatewayRefundID

	if order.IsRefundEligible() {
		// Claim the refund with a guarded update before calling the
		// gateway, so two concurrent cancels can never both refund.
		if err := s.transition(s.db, order, map[string]interface{}{
			"refund_status": RefundPending,
		}); err != nil {
			return nil, err
		}
		order.RefundStatus = RefundPending

		result := s.gateway.Refund(ctx, order.GatewayPaymentID, order.Total)
		if !result.Success {
			if err := s.transition(s.db, order, map[string]interface{}{
				"refund_status": RefundFailed,
			}); err != nil {
				return nil, err
			}
			return nil, apperror.Newf(apperror.KindGateway, "refund failed: %s", result.Error)
		}
		paymentStatus = PaymentRefunded
		refundStatus = RefundSuccessful
		refundID = result.RefundID
	} else if order.PaymentStatus == PaymentPending {
		paymentStatus = PaymentUnsuccessful
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			item := &order.Items[i]
			if err := s.stock.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.transition(tx, order, map[string]interface{}{
			"status":            StatusCancelled,
			"payment_status":    paymentStatus,
			"refund_status":     refundStatus,
			"gateway_refund_id": refundID,
			"cancelled_at":      now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	}).Info("order cancelled")

	return s.Get(orderID, userID, false)
}

// VerifyPaymentRequest carries the gateway callback fields
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment validates the client-reported payment against the
// gateway signature. Success marks the payment successful and completes
// the order immediately when every item is digital. A bad signature marks
// the payment unsuccessful without touching the order status.
func (s *Service) VerifyPayment(orderID, userID uint, req *VerifyPaymentRequest) (*Order, error) {
	order, err := s.getOwned(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.GatewayOrderID == "" || order.GatewayOrderID != req.GatewayOrderID {
		return nil, apperror.Newf(apperror.KindNotFound,
			"no pending payment for order %s", order.OrderNumber)
	}
	if order.PaymentStatus != PaymentPending {
		return nil, apperror.Newf(apperror.KindStateConflict,
			"payment for order %s is already %s", order.OrderNumber, order.PaymentStatus)
	}

	if !s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		err := s.transition(s.db, order, map[string]interface{}{
			"payment_status": PaymentUnsuccessful,
		})
		// A concurrent verification already settled the payment; the
		// signature failure still wins for this caller.
		if err != nil && !apperror.IsKind(err, apperror.KindStateConflict) {
			return nil, err
		}
		return nil, apperror.New(apperror.KindValidation, "payment signature verification failed")
	}

	updates := map[string]interface{}{
		"payment_status":     PaymentSuccessful,
		"gateway_payment_id": req.GatewayPaymentID,
		"gateway_signature":  req.Signature,
	}
	if order.AllItemsDigital() {
		now := time.Now().UTC()
		updates["status"] = StatusCompleted
		updates["delivered_at"] = now
	}

	if err := s.transition(s.db, order, updates); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":           order.ID,
		"gateway_payment_id": req.GatewayPaymentID,
	}).Info("payment verified")

	return s.Get(orderID, userID, false)
}

// RetryPaymentResponse carries what the client needs to reopen checkout
type RetryPaymentResponse struct {
	GatewayOrderID string          `json:"razorpay_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Key            string          `json:"key"`
}

// RetryPayment creates a fresh gateway intent for an online order whose
// payment is still pending, replacing the previous gateway order id.
func (s *Service) RetryPayment(ctx context.Context, orderID, userID uint) (*RetryPaymentResponse, error) {
	order, err := s.getOwned(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != PaymentMethodOnline {
		return nil, apperror.New(apperror.KindValidation, "order is not paid online")
	}
	if order.PaymentStatus != PaymentPending || order.Status != StatusProcessing {
		return nil, apperror.Newf(apperror.KindStateConflict,
			"payment for order %s cannot be retried", order.OrderNumber)
	}

	intent, err := s.gateway.CreateIntent(ctx, &payment.IntentRequest{
		Amount:   order.Total,
		Currency: order.Currency,
		Receipt:  order.OrderNumber,
	})
	if err != nil {
		return nil, err
	}

	if err := s.transition(s.db, order, map[string]interface{}{
		"gateway_order_id": intent.ID,
	}); err != nil {
		return nil, err
	}

	return &RetryPaymentResponse{
		GatewayOrderID: intent.ID,
		Amount:         order.Total,
		Currency:       order.Currency,
		Key:            s.config.Razorpay.KeyID,
	}, nil
}

// Dispatch moves a processing order to dispatched. Staff only; online
// orders must be paid first.
func (s *Service) Dispatch(orderID uint) (*Order, error) {
	order, err := s.getAny(orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeDispatched() {
		return nil, apperror.Newf(apperror.KindStateConflict,
			"order %s cannot be dispatched", order.OrderNumber)
	}

	if err := s.transition(s.db, order, map[string]interface{}{
		"status": StatusDispatched,
	}); err != nil {
		return nil, err
	}
	return s.getAny(orderID)
}

// AcceptDelivery lets the owner confirm receipt, completing the order.
func (s *Service) AcceptDelivery(orderID, userID uint) (*Order, error) {
	order, err := s.getOwned(orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.CanAcceptDelivery() {
		return nil, apperror.Newf(apperror.KindStateConflict,
			"order %s cannot be accepted", order.OrderNumber)
	}

	now := time.Now().UTC()
	if err := s.transition(s.db, order, map[string]interface{}{
		"status":       StatusCompleted,
		"delivered_at": now,
	}); err != nil {
		return nil, err
	}
	return s.Get(orderID, userID, false)
}

// UpdateStatus moves an order along the fulfilment chain
// (dispatched -> shipped -> out_for_delivery -> completed). Staff only.
func (s *Service) UpdateStatus(orderID uint, status string) (*Order, error) {
	order, err := s.getAny(orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanTransitionTo(status) {
		return nil, apperror.Newf(apperror.KindStateConflict,
			"order %s cannot move from %s to %s", order.OrderNumber, order.Status, status)
	}
	if order.RefundInFlight() {
		return nil, apperror.Newf(apperror.KindStateConflict,
			"order %s has a refund in flight", order.OrderNumber)
	}

	updates := map[string]interface{}{"status": status}
	if status == StatusCompleted {
		now := time.Now().UTC()
		updates["delivered_at"] = now
	}
	if err := s.transition(s.db, order, updates); err != nil {
		return nil, err
	}
	return s.getAny(orderID)
}

// List returns orders newest first. Staff see every order; users see
// their own.
func (s *Service) List(userID uint, isStaff bool) ([]Order, error) {
	query := s.db.Preload("Items").Preload("Shipping").Order("placed_at DESC")
	if !isStaff {
		query = query.Where("user_id = ?", userID)
	}

	var orders []Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Get returns a single order. Non-staff callers only see their own.
func (s *Service) Get(orderID, userID uint, isStaff bool) (*Order, error) {
	if isStaff {
		return s.getAny(orderID)
	}
	return s.getOwned(orderID, userID)
}

func (s *Service) getOwned(orderID, userID uint) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").Preload("Shipping").
		Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

func (s *Service) getAny(orderID uint) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").Preload("Shipping").First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UTC().Year(), suffix)
}
