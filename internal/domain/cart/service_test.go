// internal/domain/cart/service_test.go
package cart

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/clinic-store-backend/internal/domain/product"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&product.Product{}, &Cart{}, &CartItem{}))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(db, logger), db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *product.Product {
	t.Helper()
	p := product.Product{
		ItemType:   "medicine",
		ItemID:     1,
		Name:       "Arnica 30C",
		Slug:       "arnica-30c",
		UnitPrice:  decimal.RequireFromString("120.00"),
		Discount:   decimal.RequireFromString("10"),
		NetPrice:   decimal.RequireFromString("108.00"),
		Stock:      stock,
		TrackStock: true,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func TestAddItemMergesLinesAndChecksCombinedStock(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, 3)

	c, err := svc.AddItem(7, &AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)

	// The combined quantity is what gets validated, so topping up past
	// the available stock is rejected.
	_, err = svc.AddItem(7, &AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))

	c, err = svc.AddItem(7, &AddItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestClearCartRecreatesEmptyCart(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, 5)

	before, err := svc.AddItem(7, &AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	after, err := svc.ClearCart(7)
	require.NoError(t, err)
	assert.NotEqual(t, before.ID, after.ID)
	assert.Empty(t, after.Items)
}

func TestDeleteCartTxRejectsAlreadyDeletedCart(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, 5)

	c, err := svc.AddItem(7, &AddItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCartTx(db, c.ID))

	// A second checkout racing on the same cart sees zero affected rows
	// and must not produce another order.
	err = svc.DeleteCartTx(db, c.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStateConflict))
}
