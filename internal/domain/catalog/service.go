// internal/domain/catalog/service.go
package catalog

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
	"github.com/your-org/clinic-store-backend/internal/pkg/slug"
	"gorm.io/gorm"
)

// ReferenceGuard reports whether a catalog item is still wrapped by a
// store product. Implemented by the product service.
type ReferenceGuard interface {
	IsItemReferenced(itemType string, itemID uint) (bool, error)
}

// ReviewPurger removes reviews attached to a catalog item when the item is
// deleted. Implemented by the review service.
type ReviewPurger interface {
	DeleteForItem(itemType string, itemID uint) error
}

// Service handles catalog item business logic
type Service struct {
	db     *gorm.DB
	bus    EventBus.Bus
	logger *logrus.Logger
	guard  ReferenceGuard
	purger ReviewPurger
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, bus EventBus.Bus, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		bus:    bus,
		logger: logger,
	}
}

// SetReferenceGuard wires the product-side deletion guard. Set after
// construction to avoid a dependency cycle between catalog and product.
func (s *Service) SetReferenceGuard(guard ReferenceGuard) {
	s.guard = guard
}

// SetReviewPurger wires the review cleanup hook.
func (s *Service) SetReviewPurger(purger ReviewPurger) {
	s.purger = purger
}

// CreateMedicineRequest represents medicine creation data
type CreateMedicineRequest struct {
	Name                   string `json:"name" binding:"required"`
	Description            string `json:"description"`
	Composition            string `json:"composition"`
	Usage                  string `json:"usage"`
	IsPrescriptionRequired bool   `json:"is_prescription_required"`
	Manufacturer           string `json:"manufacturer"`
	Brand                  string `json:"brand"`
	Dosage                 string `json:"dosage"`
	SideEffects            string `json:"side_effects"`
	Image                  string `json:"image"`
}

// CreateTreatmentRequest represents treatment creation data
type CreateTreatmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// CreateMedicine creates a new medicine
func (s *Service) CreateMedicine(req *CreateMedicineRequest) (*Medicine, error) {
	medicine := Medicine{
		Name:                   req.Name,
		Slug:                   slug.Make(req.Name),
		Description:            req.Description,
		Composition:            req.Composition,
		Usage:                  req.Usage,
		IsPrescriptionRequired: req.IsPrescriptionRequired,
		Manufacturer:           req.Manufacturer,
		Brand:                  req.Brand,
		Dosage:                 req.Dosage,
		SideEffects:            req.SideEffects,
		Image:                  req.Image,
	}

	if err := s.db.Create(&medicine).Error; err != nil {
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}

	return &medicine, nil
}

// UpdateMedicine updates a medicine and notifies subscribers so dependent
// products can refresh their denormalized fields.
func (s *Service) UpdateMedicine(id uint, req *CreateMedicineRequest) (*Medicine, error) {
	var medicine Medicine
	if err := s.db.First(&medicine, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "medicine %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve medicine: %w", err)
	}

	medicine.Name = req.Name
	medicine.Slug = slug.Make(req.Name)
	medicine.Description = req.Description
	medicine.Composition = req.Composition
	medicine.Usage = req.Usage
	medicine.IsPrescriptionRequired = req.IsPrescriptionRequired
	medicine.Manufacturer = req.Manufacturer
	medicine.Brand = req.Brand
	medicine.Dosage = req.Dosage
	medicine.SideEffects = req.SideEffects
	medicine.Image = req.Image

	if err := s.db.Save(&medicine).Error; err != nil {
		return nil, fmt.Errorf("failed to update medicine: %w", err)
	}

	PublishItemChanged(s.bus, reference.Ref{ItemType: ItemTypeMedicine, ItemID: medicine.ID})
	return &medicine, nil
}

// GetMedicine retrieves a single medicine by ID
func (s *Service) GetMedicine(id uint) (*Medicine, error) {
	var medicine Medicine
	if err := s.db.First(&medicine, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "medicine %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve medicine: %w", err)
	}
	return &medicine, nil
}

// ListMedicines retrieves all medicines ordered by name
func (s *Service) ListMedicines() ([]Medicine, error) {
	var medicines []Medicine
	if err := s.db.Order("name").Find(&medicines).Error; err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, nil
}

// DeleteMedicine deletes a medicine unless a product still references it.
func (s *Service) DeleteMedicine(id uint) error {
	return s.deleteItem(ItemTypeMedicine, id, &Medicine{})
}

// CreateTreatment creates a new treatment
func (s *Service) CreateTreatment(req *CreateTreatmentRequest) (*Treatment, error) {
	treatment := Treatment{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Image:       req.Image,
	}

	if err := s.db.Create(&treatment).Error; err != nil {
		return nil, fmt.Errorf("failed to create treatment: %w", err)
	}

	return &treatment, nil
}

// UpdateTreatment updates a treatment and notifies subscribers.
func (s *Service) UpdateTreatment(id uint, req *CreateTreatmentRequest) (*Treatment, error) {
	var treatment Treatment
	if err := s.db.First(&treatment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "treatment %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve treatment: %w", err)
	}

	treatment.Name = req.Name
	treatment.Slug = slug.Make(req.Name)
	treatment.Description = req.Description
	treatment.Image = req.Image

	if err := s.db.Save(&treatment).Error; err != nil {
		return nil, fmt.Errorf("failed to update treatment: %w", err)
	}

	PublishItemChanged(s.bus, reference.Ref{ItemType: ItemTypeTreatment, ItemID: treatment.ID})
	return &treatment, nil
}

// GetTreatment retrieves a single treatment by ID
func (s *Service) GetTreatment(id uint) (*Treatment, error) {
	var treatment Treatment
	if err := s.db.First(&treatment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "treatment %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve treatment: %w", err)
	}
	return &treatment, nil
}

// ListTreatments retrieves all treatments ordered by name
func (s *Service) ListTreatments() ([]Treatment, error) {
	var treatments []Treatment
	if err := s.db.Order("name").Find(&treatments).Error; err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}

// DeleteTreatment deletes a treatment unless a product still references it.
func (s *Service) DeleteTreatment(id uint) error {
	return s.deleteItem(ItemTypeTreatment, id, &Treatment{})
}

// deleteItem enforces the reference guard, purges reviews and removes the
// item row.
func (s *Service) deleteItem(itemType string, id uint, model interface{}) error {
	if s.guard != nil {
		referenced, err := s.guard.IsItemReferenced(itemType, id)
		if err != nil {
			return fmt.Errorf("failed to check product references: %w", err)
		}
		if referenced {
			return apperror.Newf(apperror.KindReferencedItem,
				"cannot delete %s %d: it is referenced by a product", itemType, id)
		}
	}

	if s.purger != nil {
		if err := s.purger.DeleteForItem(itemType, id); err != nil {
			return fmt.Errorf("failed to delete reviews for %s %d: %w", itemType, id, err)
		}
	}

	result := s.db.Delete(model, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", itemType, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindNotFound, "%s %d not found", itemType, id)
	}

	s.logger.WithFields(logrus.Fields{"item_type": itemType, "item_id": id}).Info("catalog item deleted")
	return nil
}
