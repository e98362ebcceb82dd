// internal/domain/review/service.go
package review

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
	"gorm.io/gorm"
)

// Service handles review business logic
type Service struct {
	db        *gorm.DB
	allowList *reference.AllowList
	logger    *logrus.Logger
}

// NewService creates a new review service. The allow-list is the feedback
// one, which may differ from the store's.
func NewService(db *gorm.DB, allowList *reference.AllowList, logger *logrus.Logger) *Service {
	return &Service{db: db, allowList: allowList, logger: logger}
}

// CreateReviewRequest represents review creation data
type CreateReviewRequest struct {
	ItemType string `json:"item_type" binding:"required"`
	ItemID   uint   `json:"item_id" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
}

// UpdateReviewRequest represents review update data
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// Create adds a review for an allow-listed catalog item. A user may
// review an item only once.
func (s *Service) Create(userID uint, req *CreateReviewRequest) (*Review, error) {
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	ref := reference.Ref{ItemType: req.ItemType, ItemID: req.ItemID}
	if err := s.allowList.Validate(s.db, ref); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&Review{}).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, req.ItemType, req.ItemID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if count > 0 {
		return nil, apperror.New(apperror.KindValidation, "you have already reviewed this item")
	}

	review := Review{
		UserID:   userID,
		ItemType: req.ItemType,
		ItemID:   req.ItemID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := s.db.Create(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return &review, nil
}

// Update modifies a review's rating and comment. Only the author or staff
// may update.
func (s *Service) Update(reviewID, userID uint, isStaff bool, req *UpdateReviewRequest) (*Review, error) {
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	review, err := s.get(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID && !isStaff {
		return nil, apperror.New(apperror.KindPermission, "you may only edit your own reviews")
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	if err := s.db.Save(review).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}

// Delete removes a review. Only the author or staff may delete.
func (s *Service) Delete(reviewID, userID uint, isStaff bool) error {
	review, err := s.get(reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID && !isStaff {
		return apperror.New(apperror.KindPermission, "you may only delete your own reviews")
	}

	if err := s.db.Delete(review).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// ListRequest represents review list query parameters
type ListRequest struct {
	ItemType string `form:"item_type"`
	ItemID   uint   `form:"item_id"`
	Rating   int    `form:"rating"`
}

// List retrieves reviews ordered by rating (highest first), then newest.
func (s *Service) List(req *ListRequest) ([]Review, error) {
	query := s.db.Model(&Review{}).Order("rating DESC, created_at DESC")
	if req != nil {
		if req.ItemType != "" {
			query = query.Where("item_type = ?", req.ItemType)
		}
		if req.ItemID != 0 {
			query = query.Where("item_id = ?", req.ItemID)
		}
		if req.Rating != 0 {
			query = query.Where("rating = ?", req.Rating)
		}
	}

	var reviews []Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// DeleteForItem removes every review attached to a catalog item. Called
// by the catalog service when the item itself is deleted.
func (s *Service) DeleteForItem(itemType string, itemID uint) error {
	if err := s.db.Where("item_type = ? AND item_id = ?", itemType, itemID).
		Delete(&Review{}).Error; err != nil {
		return fmt.Errorf("failed to delete reviews for item: %w", err)
	}
	return nil
}

func (s *Service) get(reviewID uint) (*Review, error) {
	var review Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "review %d not found", reviewID)
		}
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}
	return &review, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperror.New(apperror.KindValidation, "rating must be between 1 and 5")
	}
	return nil
}
