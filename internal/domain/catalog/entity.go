// internal/domain/catalog/entity.go
package catalog

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Item type names used in polymorphic references.
const (
	ItemTypeMedicine  = "medicine"
	ItemTypeTreatment = "treatment"
)

// Medicine represents a sellable medicine in the catalog
type Medicine struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Composition string `gorm:"type:text" json:"composition"`
	Usage       string `gorm:"type:text" json:"usage"`

	IsPrescriptionRequired bool `gorm:"default:true" json:"is_prescription_required"`

	Manufacturer string `gorm:"size:255" json:"manufacturer"`
	Brand        string `gorm:"size:255" json:"brand"`
	Dosage       string `gorm:"size:255" json:"dosage"`
	SideEffects  string `gorm:"type:text" json:"side_effects"`
	Image        string `gorm:"size:500" json:"image"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Treatment represents a clinic treatment offered for sale
type Treatment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Image       string `gorm:"size:500" json:"image"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Medicine) TableName() string  { return "medicines" }
func (Treatment) TableName() string { return "treatments" }

// GetAbsoluteURL returns the public detail URL for the medicine
func (m *Medicine) GetAbsoluteURL() string {
	return fmt.Sprintf("/medicines/%s", m.Slug)
}

// GetAbsoluteURL returns the public detail URL for the treatment
func (t *Treatment) GetAbsoluteURL() string {
	return fmt.Sprintf("/treatments/%s", t.Slug)
}
