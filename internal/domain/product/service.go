// internal/domain/product/service.go
package product

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/config"
	"github.com/your-org/clinic-store-backend/internal/domain/catalog"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
	"github.com/your-org/clinic-store-backend/internal/pkg/slug"
	"gorm.io/gorm"
)

// Service handles product and pricing business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	allowList *reference.AllowList
	logger    *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config, allowList *reference.AllowList, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		allowList: allowList,
		logger:    logger,
	}
}

// SubscribeCatalogChanges wires the service to catalog item change events
// so denormalized display fields stay current.
func (s *Service) SubscribeCatalogChanges(bus EventBus.Bus) error {
	return catalog.SubscribeItemChanged(bus, func(ref reference.Ref) {
		if err := s.RefreshForItem(ref); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"item_type": ref.ItemType,
				"item_id":   ref.ItemID,
			}).Warn("failed to refresh product for changed catalog item")
		}
	})
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	ItemType   string          `json:"item_type" binding:"required"`
	ItemID     uint            `json:"item_id" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"required"`
	Discount   decimal.Decimal `json:"discount"`
	Stock      int             `json:"stock"`
	TrackStock *bool           `json:"track_stock"`
	IsDigital  bool            `json:"is_digital"`
	Trending   bool            `json:"trending"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"required"`
	Discount   decimal.Decimal `json:"discount"`
	Stock      *int            `json:"stock"`
	TrackStock *bool           `json:"track_stock"`
	IsDigital  *bool           `json:"is_digital"`
	Trending   *bool           `json:"trending"`
}

// Create creates a product wrapping a catalog item. The reference must be
// allow-listed and point at an existing item, and no other product may
// wrap the same item.
func (s *Service) Create(req *CreateProductRequest) (*Product, error) {
	if req.Stock < 0 {
		return nil, apperror.New(apperror.KindValidation, "stock cannot be negative")
	}

	netPrice, err := ComputeNetPrice(req.UnitPrice, req.Discount)
	if err != nil {
		return nil, err
	}

	ref := reference.Ref{ItemType: req.ItemType, ItemID: req.ItemID}
	display, err := s.allowList.Resolve(s.db, ref)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&Product{}).
		Where("item_type = ? AND item_id = ?", req.ItemType, req.ItemID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if count > 0 {
		return nil, apperror.Newf(apperror.KindValidation,
			"a product already exists for %s %d", req.ItemType, req.ItemID)
	}

	trackStock := true
	if req.TrackStock != nil {
		trackStock = *req.TrackStock
	}

	product := Product{
		ItemType:     req.ItemType,
		ItemID:       req.ItemID,
		Name:         display.Name,
		Slug:         slug.Make(display.Name),
		PreviewImage: display.Image,
		ProductURL:   display.AbsoluteURL,
		UnitPrice:    req.UnitPrice,
		Discount:     req.Discount,
		NetPrice:     netPrice,
		Stock:        req.Stock,
		TrackStock:   trackStock,
		IsDigital:    req.IsDigital,
		Trending:     req.Trending,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &product, nil
}

// Update updates pricing and stock flags, recomputing the net price and
// refreshing the denormalized display fields.
func (s *Service) Update(id uint, req *UpdateProductRequest) (*Product, error) {
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	netPrice, err := ComputeNetPrice(req.UnitPrice, req.Discount)
	if err != nil {
		return nil, err
	}

	product.UnitPrice = req.UnitPrice
	product.Discount = req.Discount
	product.NetPrice = netPrice
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperror.New(apperror.KindValidation, "stock cannot be negative")
		}
		product.Stock = *req.Stock
	}
	if req.TrackStock != nil {
		product.TrackStock = *req.TrackStock
	}
	if req.IsDigital != nil {
		product.IsDigital = *req.IsDigital
	}
	if req.Trending != nil {
		product.Trending = *req.Trending
	}

	display, err := s.allowList.Resolve(s.db, product.Ref())
	if err != nil {
		return nil, err
	}
	product.Name = display.Name
	product.Slug = slug.Make(display.Name)
	product.PreviewImage = display.Image
	product.ProductURL = display.AbsoluteURL

	if err := s.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

// Get retrieves a single product by ID
func (s *Service) Get(id uint) (*Product, error) {
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetBySlug retrieves a single product by slug
func (s *Service) GetBySlug(productSlug string) (*Product, error) {
	var product Product
	if err := s.db.Where("slug = ?", productSlug).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "product %q not found", productSlug)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Trending *bool  `form:"trending"`
	Search   string `form:"search"`
}

// List retrieves products, newest first
func (s *Service) List(req *ListRequest) ([]Product, error) {
	query := s.db.Model(&Product{}).Order("created_at DESC")
	if req != nil {
		if req.Trending != nil {
			query = query.Where("trending = ?", *req.Trending)
		}
		if req.Search != "" {
			query = query.Where("name ILIKE ?", "%"+req.Search+"%")
		}
	}

	var products []Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Delete removes a product
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindNotFound, "product %d not found", id)
	}
	return nil
}

// RefreshDerivedFields re-reads the referenced catalog item and updates
// the product's denormalized display fields and net price.
func (s *Service) RefreshDerivedFields(id uint) error {
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.Newf(apperror.KindNotFound, "product %d not found", id)
		}
		return fmt.Errorf("failed to retrieve product: %w", err)
	}
	return s.refresh(&product)
}

// RefreshForItem refreshes the product wrapping the given catalog item, if
// one exists.
func (s *Service) RefreshForItem(ref reference.Ref) error {
	var product Product
	err := s.db.Where("item_type = ? AND item_id = ?", ref.ItemType, ref.ItemID).First(&product).Error
	if err == gorm.ErrRecordNotFound {
		return nil // nothing wraps this item
	}
	if err != nil {
		return fmt.Errorf("failed to look up product for item: %w", err)
	}
	return s.refresh(&product)
}

func (s *Service) refresh(product *Product) error {
	display, err := s.allowList.Resolve(s.db, product.Ref())
	if err != nil {
		return err
	}

	netPrice, err := ComputeNetPrice(product.UnitPrice, product.Discount)
	if err != nil {
		return err
	}

	product.Name = display.Name
	product.Slug = slug.Make(display.Name)
	product.PreviewImage = display.Image
	product.ProductURL = display.AbsoluteURL
	product.NetPrice = netPrice

	if err := s.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to refresh product: %w", err)
	}
	return nil
}

// ConsumeStock atomically decrements stock inside the caller's
// transaction. The guard and the decrement are a single UPDATE, so two
// concurrent checkouts can never both pass a stale stock check. Untracked
// products consume nothing.
func (s *Service) ConsumeStock(tx *gorm.DB, productID uint, quantity int) error {
	if quantity < 0 {
		return apperror.New(apperror.KindValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return nil
	}

	result := tx.Model(&Product{}).
		Where("id = ? AND track_stock = ? AND stock >= ?", productID, true, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to consume stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var product Product
		if err := tx.Select("id", "name", "track_stock").First(&product, productID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.Newf(apperror.KindNotFound, "product %d not found", productID)
			}
			return fmt.Errorf("failed to retrieve product: %w", err)
		}
		if !product.TrackStock {
			return nil // stock not tracked, nothing to consume
		}
		return apperror.Newf(apperror.KindInsufficientStock,
			"not enough stock to consume for %s", product.Name)
	}

	return s.recordMovement(tx, productID, -quantity, MovementReasonOrderPlaced)
}

// RestoreStock atomically increments stock inside the caller's
// transaction. A no-op for untracked products and zero quantities.
func (s *Service) RestoreStock(tx *gorm.DB, productID uint, quantity int) error {
	if quantity < 0 {
		return apperror.New(apperror.KindValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return nil
	}

	result := tx.Model(&Product{}).
		Where("id = ? AND track_stock = ?", productID, true).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restore stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil // missing or untracked product, nothing to restore
	}

	return s.recordMovement(tx, productID, quantity, MovementReasonOrderCancelled)
}

func (s *Service) recordMovement(tx *gorm.DB, productID uint, quantity int, reason string) error {
	movement := StockMovement{
		ProductID: productID,
		Quantity:  quantity,
		Reason:    reason,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// IsItemReferenced reports whether any product wraps the given catalog
// item. Used as the catalog deletion guard.
func (s *Service) IsItemReferenced(itemType string, itemID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&Product{}).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count product references: %w", err)
	}
	return count > 0, nil
}
