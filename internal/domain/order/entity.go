// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses. Completed and cancelled are terminal.
const (
	StatusProcessing     = "processing"
	StatusDispatched     = "dispatched"
	StatusShipped        = "shipped"
	StatusOutForDelivery = "out_for_delivery"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
)

// Payment statuses. Refunded is only reachable from successful via
// cancellation.
const (
	PaymentPending      = "pending"
	PaymentSuccessful   = "successful"
	PaymentUnsuccessful = "unsuccessful"
	PaymentRefunded     = "refunded"
)

// Refund statuses.
const (
	RefundNone       = "none"
	RefundPending    = "pending"
	RefundSuccessful = "successful"
	RefundFailed     = "failed"
)

// Payment methods.
const (
	PaymentMethodOnline = "online"
	PaymentMethodCOD    = "cod"
)

// Delivery methods.
const (
	DeliveryHome   = "home_delivery"
	DeliveryPickup = "pickup"
)

// Order is the root of the purchase lifecycle. Item prices are snapshotted
// at placement time and never change afterwards.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:32" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`

	Status        string `gorm:"not null;size:20;default:processing" json:"status"`
	PaymentStatus string `gorm:"not null;size:20;default:pending" json:"payment_status"`
	RefundStatus  string `gorm:"not null;size:20;default:none" json:"refund_status"`

	PaymentMethod  string `gorm:"not null;size:20" json:"payment_method"`
	DeliveryMethod string `gorm:"not null;size:20" json:"delivery_method"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DeliveryCharge decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"delivery_charge"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Currency       string          `gorm:"not null;size:3" json:"currency"`

	GatewayOrderID   string `gorm:"size:64;index" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `gorm:"size:64" json:"gateway_payment_id,omitempty"`
	GatewaySignature string `gorm:"size:128" json:"-"`
	GatewayRefundID  string `gorm:"size:64" json:"gateway_refund_id,omitempty"`

	Items    []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Shipping *ShippingDetail `gorm:"foreignKey:OrderID" json:"shipping,omitempty"`

	PlacedAt    time.Time  `gorm:"not null;index" json:"placed_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OrderItem is a priced snapshot of a cart line at placement time.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"unit_price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
	IsDigital bool            `gorm:"default:false" json:"is_digital"`
	CreatedAt time.Time       `json:"created_at"`
}

// ShippingDetail holds the home delivery address for an order.
type ShippingDetail struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	FullName     string    `gorm:"not null;size:255" json:"full_name"`
	Phone        string    `gorm:"not null;size:20" json:"phone"`
	AddressLine1 string    `gorm:"not null;size:255" json:"address_line1"`
	AddressLine2 string    `gorm:"size:255" json:"address_line2"`
	City         string    `gorm:"not null;size:100" json:"city"`
	State        string    `gorm:"not null;size:100" json:"state"`
	PostalCode   string    `gorm:"not null;size:20" json:"postal_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string          { return "orders" }
func (OrderItem) TableName() string      { return "order_items" }
func (ShippingDetail) TableName() string { return "shipping_details" }

// IsTerminal reports whether the order has reached a final status
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// CanBeCancelled reports whether the order may still be cancelled.
// Cancellation is only allowed before dispatch.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusProcessing
}

// CanBeDispatched reports whether the order may be dispatched. Online
// orders must be paid first; COD orders ship unpaid. An order with a
// refund in flight is being cancelled and must not ship.
func (o *Order) CanBeDispatched() bool {
	if o.Status != StatusProcessing || o.RefundInFlight() {
		return false
	}
	if o.PaymentMethod == PaymentMethodOnline {
		return o.PaymentStatus == PaymentSuccessful
	}
	return true
}

// IsRefundEligible reports whether cancelling this order must go through
// the gateway refund path.
func (o *Order) IsRefundEligible() bool {
	return o.PaymentMethod == PaymentMethodOnline &&
		o.PaymentStatus == PaymentSuccessful &&
		o.GatewayPaymentID != ""
}

// CanAcceptDelivery reports whether the owner may mark the order
// delivered.
func (o *Order) CanAcceptDelivery() bool {
	return !o.IsTerminal() && !o.RefundInFlight() && o.PaymentStatus == PaymentSuccessful
}

// RefundInFlight reports whether a gateway refund has been claimed but
// not yet resolved. Fulfilment transitions are blocked while it is set.
func (o *Order) RefundInFlight() bool {
	return o.RefundStatus == RefundPending
}

// AllItemsDigital reports whether every line is a digital product, in
// which case payment success completes the order immediately.
func (o *Order) AllItemsDigital() bool {
	if len(o.Items) == 0 {
		return false
	}
	for i := range o.Items {
		if !o.Items[i].IsDigital {
			return false
		}
	}
	return true
}

// nextStatuses maps each order status to the statuses staff may move it
// to. Terminal statuses have no successors.
var nextStatuses = map[string][]string{
	StatusProcessing:     {StatusDispatched, StatusCancelled},
	StatusDispatched:     {StatusShipped},
	StatusShipped:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusCompleted},
}

// CanTransitionTo reports whether the order status may move to target.
func (o *Order) CanTransitionTo(target string) bool {
	for _, next := range nextStatuses[o.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// BeforeCreate stamps the placement time if unset
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.PlacedAt.IsZero() {
		o.PlacedAt = time.Now().UTC()
	}
	return nil
}
