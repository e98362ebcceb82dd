// internal/domain/review/entity.go
package review

import (
	"time"

	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
)

// Review is a rating with an optional comment attached to a catalog item.
// A user reviews each item at most once.
type Review struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_reviews_user_item" json:"user_id"`

	ItemType string `gorm:"not null;size:50;uniqueIndex:idx_reviews_user_item" json:"item_type"`
	ItemID   uint   `gorm:"not null;uniqueIndex:idx_reviews_user_item" json:"item_id"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Review) TableName() string { return "reviews" }

// Ref returns the review's polymorphic catalog reference
func (r *Review) Ref() reference.Ref {
	return reference.Ref{ItemType: r.ItemType, ItemID: r.ItemID}
}
