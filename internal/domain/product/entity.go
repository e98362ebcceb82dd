// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
	"gorm.io/gorm"
)

// Product wraps exactly one catalog item and makes it sellable. Display
// fields (name, slug, preview image, URL) are denormalized from the
// referenced item and refreshed whenever the item changes.
type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Polymorphic reference; at most one product per catalog item.
	ItemType string `gorm:"not null;size:50;uniqueIndex:idx_products_item_ref" json:"item_type"`
	ItemID   uint   `gorm:"not null;uniqueIndex:idx_products_item_ref" json:"item_id"`

	Name         string `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Slug         string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	PreviewImage string `gorm:"size:500" json:"preview_image"`
	ProductURL   string `gorm:"size:500" json:"product_url"`

	UnitPrice decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"unit_price"`
	Discount  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`
	NetPrice  decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"net_price"`

	Stock      int  `gorm:"not null;default:0" json:"stock"`
	TrackStock bool `gorm:"default:true" json:"track_stock"`
	IsDigital  bool `gorm:"default:false" json:"is_digital"`
	Trending   bool `gorm:"default:false" json:"trending"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// StockMovement records every stock mutation for auditing. Quantity is
// negative for consumption and positive for restoration.
type StockMovement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Reason    string    `gorm:"not null;size:50" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Stock movement reasons.
const (
	MovementReasonOrderPlaced    = "order_placed"
	MovementReasonOrderCancelled = "order_cancelled"
	MovementReasonManual         = "manual"
)

// TableName overrides
func (Product) TableName() string       { return "products" }
func (StockMovement) TableName() string { return "stock_movements" }

// Ref returns the product's polymorphic catalog reference
func (p *Product) Ref() reference.Ref {
	return reference.Ref{ItemType: p.ItemType, ItemID: p.ItemID}
}

// IsAvailable reports whether the product can currently be purchased
func (p *Product) IsAvailable() bool {
	return !p.TrackStock || p.Stock > 0
}

// AvailabilityStatus returns a display string for availability
func (p *Product) AvailabilityStatus() string {
	if p.IsAvailable() {
		return "In stock"
	}
	return "Out of stock"
}
