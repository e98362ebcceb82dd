// internal/domain/product/pricing_test.go
package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
)

func TestComputeNetPrice(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		discount  string
		want      string
	}{
		{"no discount", "100.00", "0", "100.00"},
		{"round discount", "100.00", "10", "90.00"},
		{"full discount", "250.00", "100", "0.00"},
		{"fractional result rounds half up", "99.99", "5", "94.99"},
		{"half cent rounds up", "10.01", "50", "5.01"},
		{"tiny price", "0.01", "50", "0.01"},
		{"third-style discount", "10.00", "33.33", "6.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := decimal.RequireFromString(tt.unitPrice)
			disc := decimal.RequireFromString(tt.discount)

			got, err := ComputeNetPrice(unit, disc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestComputeNetPriceRejectsBadDiscount(t *testing.T) {
	unit := decimal.RequireFromString("50.00")

	_, err := ComputeNetPrice(unit, decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = ComputeNetPrice(unit, decimal.RequireFromString("100.01"))
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestProductAvailability(t *testing.T) {
	tracked := Product{Stock: 0, TrackStock: true}
	assert.False(t, tracked.IsAvailable())
	assert.Equal(t, "Out of stock", tracked.AvailabilityStatus())

	tracked.Stock = 3
	assert.True(t, tracked.IsAvailable())
	assert.Equal(t, "In stock", tracked.AvailabilityStatus())

	untracked := Product{Stock: 0, TrackStock: false}
	assert.True(t, untracked.IsAvailable())
}
