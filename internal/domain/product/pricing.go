// internal/domain/product/pricing.go
package product

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
)

var hundred = decimal.NewFromInt(100)

// ComputeNetPrice derives the sellable price from the unit price and a
// percentage discount: unit_price * (1 - discount/100), rounded half-up to
// two decimal places. Discount must lie in [0, 100].
func ComputeNetPrice(unitPrice, discount decimal.Decimal) (decimal.Decimal, error) {
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return decimal.Decimal{}, apperror.New(apperror.KindValidation,
			"discount must be between 0 and 100")
	}

	multiplier := decimal.NewFromInt(1).Sub(discount.Div(hundred))
	return unitPrice.Mul(multiplier).Round(2), nil
}
