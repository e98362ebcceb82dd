// internal/domain/catalog/kinds.go
package catalog

import (
	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
	"gorm.io/gorm"
)

// RegisterKinds registers every catalog item type with the reference
// registry. This is the closed set of polymorphic targets.
func RegisterKinds(registry *reference.Registry) {
	registry.Register(medicineKind{})
	registry.Register(treatmentKind{})
}

type medicineKind struct{}

func (medicineKind) Name() string { return ItemTypeMedicine }

func (medicineKind) Exists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.Model(&Medicine{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (medicineKind) Display(db *gorm.DB, id uint) (reference.Display, error) {
	var medicine Medicine
	if err := db.First(&medicine, id).Error; err != nil {
		return reference.Display{}, err
	}
	return reference.Display{
		Name:        medicine.Name,
		Image:       medicine.Image,
		AbsoluteURL: medicine.GetAbsoluteURL(),
	}, nil
}

type treatmentKind struct{}

func (treatmentKind) Name() string { return ItemTypeTreatment }

func (treatmentKind) Exists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.Model(&Treatment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (treatmentKind) Display(db *gorm.DB, id uint) (reference.Display, error) {
	var treatment Treatment
	if err := db.First(&treatment, id).Error; err != nil {
		return reference.Display{}, err
	}
	return reference.Display{
		Name:        treatment.Name,
		Image:       treatment.Image,
		AbsoluteURL: treatment.GetAbsoluteURL(),
	}, nil
}
