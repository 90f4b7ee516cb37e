// Package pricing computes checkout totals from a cart snapshot. All
// functions are pure; swap lines are value-neutral and contribute nothing.
package pricing

import (
	"math"

	"campusmarket/model"
)

type Config struct {
	TaxRate     float64
	ShippingFee float64
}

func DefaultConfig() Config {
	return Config{TaxRate: 0.08, ShippingFee: 4.99}
}

type Quote struct {
	PurchaseSubtotal float64 `json:"purchase_subtotal"`
	BorrowDeposits   float64 `json:"borrow_deposits"`
	Shipping         float64 `json:"shipping"`
	Tax              float64 `json:"tax"`
	Total            float64 `json:"total"`
}

// PurchaseSubtotal sums unit price × quantity over purchase lines.
func PurchaseSubtotal(items []model.CartItem) float64 {
	var sum float64
	for _, it := range items {
		if it.Mode == model.ModePurchase {
			sum += it.UnitPrice * float64(it.Quantity)
		}
	}
	return sum
}

// BorrowDeposits sums deposit × quantity over borrow lines. Deposits are
// refundable and never taxed.
func BorrowDeposits(items []model.CartItem) float64 {
	var sum float64
	for _, it := range items {
		if it.Mode == model.ModeBorrow {
			sum += it.Deposit * float64(it.Quantity)
		}
	}
	return sum
}

func Shipping(cfg Config, delivery model.DeliveryOption) float64 {
	if delivery == model.DeliveryShip {
		return cfg.ShippingFee
	}
	return 0
}

// QuoteFor prices a snapshot. Tax applies to the purchase subtotal only.
func QuoteFor(cfg Config, items []model.CartItem, delivery model.DeliveryOption) Quote {
	sub := PurchaseSubtotal(items)
	dep := BorrowDeposits(items)
	ship := Shipping(cfg, delivery)
	tax := round2(sub * cfg.TaxRate)

	return Quote{
		PurchaseSubtotal: round2(sub),
		BorrowDeposits:   round2(dep),
		Shipping:         round2(ship),
		Tax:              tax,
		Total:            round2(sub + dep + ship + tax),
	}
}

func (q Quote) Totals() model.Totals {
	return model.Totals{
		PurchaseSubtotal: q.PurchaseSubtotal,
		BorrowDeposits:   q.BorrowDeposits,
		Shipping:         q.Shipping,
		Tax:              q.Tax,
		Total:            q.Total,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
