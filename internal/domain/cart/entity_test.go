// internal/domain/cart/entity_test.go
package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/your-org/clinic-store-backend/internal/domain/product"
)

func TestCartTotals(t *testing.T) {
	c := Cart{
		Items: []CartItem{
			{
				Quantity: 2,
				Product:  product.Product{NetPrice: decimal.RequireFromString("54.00")},
			},
			{
				Quantity: 1,
				Product:  product.Product{NetPrice: decimal.RequireFromString("120.50")},
			},
		},
	}

	assert.Equal(t, "228.50", c.TotalPrice().StringFixed(2))
	assert.Equal(t, 3, c.TotalItems())
}

func TestCartTotalsReflectCurrentPrices(t *testing.T) {
	c := Cart{
		Items: []CartItem{
			{Quantity: 2, Product: product.Product{NetPrice: decimal.RequireFromString("10.00")}},
		},
	}
	assert.Equal(t, "20.00", c.TotalPrice().StringFixed(2))

	// Totals are derived on read, so a price change shows up immediately.
	c.Items[0].Product.NetPrice = decimal.RequireFromString("8.00")
	assert.Equal(t, "16.00", c.TotalPrice().StringFixed(2))
}

func TestEmptyCartTotals(t *testing.T) {
	c := Cart{}
	assert.True(t, c.TotalPrice().IsZero())
	assert.Equal(t, 0, c.TotalItems())
}
