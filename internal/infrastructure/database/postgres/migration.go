// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/domain/cart"
	"github.com/your-org/clinic-store-backend/internal/domain/catalog"
	"github.com/your-org/clinic-store-backend/internal/domain/order"
	"github.com/your-org/clinic-store-backend/internal/domain/product"
	"github.com/your-org/clinic-store-backend/internal/domain/review"
	"github.com/your-org/clinic-store-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{db: db, logger: logger}
}

// RunAutoMigrations runs GORM auto-migrations for all models in
// dependency order.
func (m *Migration) RunAutoMigrations() error {
	models := []interface{}{
		&user.User{},

		&catalog.Medicine{},
		&catalog.Treatment{},

		&product.Product{},
		&product.StockMovement{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.ShippingDetail{},

		&review.Review{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes beyond what the model tags
// declare.
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_trending ON products(trending) WHERE trending",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_item ON reviews(item_type, item_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at DESC)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("failed to create index")
		}
	}

	m.logger.Info("database indexes ensured")
	return nil
}
