// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/clinic-store-backend/internal/domain/product"
)

// Cart represents a user's shopping cart. Each user has exactly one cart;
// it is recreated empty whenever it is deleted.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem represents one product line in a cart. A cart holds at most one
// line per product.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Product   product.Product `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// LineTotal is the item's quantity priced at the product's current net
// price.
func (ci *CartItem) LineTotal() decimal.Decimal {
	return ci.Product.NetPrice.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// TotalPrice sums the line totals at current net prices. Totals are always
// derived on read, never stored, so price changes are reflected
// immediately.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].LineTotal())
	}
	return total
}

// TotalItems is the number of units across all lines
func (c *Cart) TotalItems() int {
	count := 0
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}
