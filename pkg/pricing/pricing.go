package pricing

import (
	"github.com/shopspring/decimal"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

var hundred = decimal.NewFromInt(100)

// ShippingPolicy charges Fee unless the pre-discount subtotal reaches FreeThreshold
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	Fee           decimal.Decimal
}

func NewShippingPolicy(freeThreshold, fee float64) ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: decimal.NewFromFloat(freeThreshold),
		Fee:           decimal.NewFromFloat(fee),
	}
}

func DefaultShippingPolicy() ShippingPolicy {
	return NewShippingPolicy(100, 10)
}

func (p ShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.Fee
}

// Totals is the order-level breakdown shown at checkout and persisted on the order
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	Discount     float64 `json:"discount"`
	Total        float64 `json:"total"`
}

// EffectivePrice applies the product's percent discount, if any, to its unit price
func EffectivePrice(p models.Product) decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	if !p.HasDiscount() {
		return price
	}
	pct := decimal.NewFromInt(int64(p.DiscountPercent()))
	return price.Mul(hundred.Sub(pct)).Div(hundred)
}

func LineTotal(item models.CartItem) decimal.Decimal {
	return EffectivePrice(item.Product).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// CartTotal is the sum of effective line totals, the figure a cart displays
func CartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// Compute derives the checkout breakdown. Subtotal is pre-discount and the discount is reported separately,
// so that total = subtotal + shippingCost - discount holds exactly before rounding.
func Compute(items []models.CartItem, policy ShippingPolicy) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		price := decimal.NewFromFloat(item.Product.Price)
		subtotal = subtotal.Add(price.Mul(qty))
		if item.Product.HasDiscount() {
			pct := decimal.NewFromInt(int64(item.Product.DiscountPercent()))
			discount = discount.Add(price.Mul(pct).Div(hundred).Mul(qty))
		}
	}

	subtotal = subtotal.Round(2)
	discount = discount.Round(2)
	shipping := policy.Cost(subtotal).Round(2)
	total := subtotal.Add(shipping).Sub(discount)

	return Totals{
		Subtotal:     subtotal.InexactFloat64(),
		ShippingCost: shipping.InexactFloat64(),
		Discount:     discount.InexactFloat64(),
		Total:        total.InexactFloat64(),
	}
}

// MinorUnits converts a currency amount to integer cents, rounding half away from zero
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// Round2 rounds to cents for display
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
