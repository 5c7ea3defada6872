package receipt

import (
	"mein-essen/domain"

	"github.com/shopspring/decimal"
)

// LineTotal is quantity × unit price rounded half away from zero to cents.
func LineTotal(qty, price decimal.Decimal) decimal.Decimal {
	return qty.Mul(price).Round(2)
}

// Quantity rounds a quantity to the three decimals the quantity column keeps,
// so stored rows still satisfy total = quantity × price.
func Quantity(qty float64) decimal.Decimal {
	return decimal.NewFromFloat(qty).Round(3)
}

// UnitPrice rounds a model or client supplied price to cents.
func UnitPrice(price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Round(2)
}

// ReceiptTotal sums the rounded line totals of items.
func ReceiptTotal(items []domain.ScannedItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(Quantity(item.Qty), UnitPrice(item.Price)))
	}
	return total
}
