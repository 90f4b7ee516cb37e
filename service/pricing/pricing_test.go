package pricing

import (
	"testing"

	"campusmarket/model"

	"github.com/stretchr/testify/require"
)

func TestQuoteFor_MixedCart(t *testing.T) {
	cfg := DefaultConfig()
	items := []model.CartItem{
		{BookID: 1, Mode: model.ModePurchase, Quantity: 2, UnitPrice: 20},
		{BookID: 2, Mode: model.ModeBorrow, Quantity: 1, Deposit: 15},
		{BookID: 3, Mode: model.ModeSwap, Quantity: 1},
	}

	q := QuoteFor(cfg, items, model.DeliveryPickup)
	require.Equal(t, 40.00, q.PurchaseSubtotal)
	require.Equal(t, 15.00, q.BorrowDeposits)
	require.Equal(t, 0.00, q.Shipping)
	require.Equal(t, 3.20, q.Tax) // 8% of purchases only
	require.Equal(t, 58.20, q.Total)
}

func TestQuoteFor_TaxNeverOnDepositsOrSwaps(t *testing.T) {
	cfg := Config{TaxRate: 0.08, ShippingFee: 4.99}
	items := []model.CartItem{
		{BookID: 2, Mode: model.ModeBorrow, Quantity: 3, Deposit: 10},
		{BookID: 3, Mode: model.ModeSwap, Quantity: 5, UnitPrice: 99},
	}

	q := QuoteFor(cfg, items, model.DeliveryPickup)
	require.Equal(t, 0.00, q.Tax)
	require.Equal(t, 0.00, q.PurchaseSubtotal)
	require.Equal(t, 30.00, q.BorrowDeposits)
	require.Equal(t, 30.00, q.Total)
}

func TestQuoteFor_ShippingOnlyWhenShipped(t *testing.T) {
	cfg := DefaultConfig()
	items := []model.CartItem{
		{BookID: 1, Mode: model.ModePurchase, Quantity: 1, UnitPrice: 10},
	}

	pickup := QuoteFor(cfg, items, model.DeliveryPickup)
	require.Equal(t, 0.00, pickup.Shipping)
	require.Equal(t, 10.80, pickup.Total)

	shipped := QuoteFor(cfg, items, model.DeliveryShip)
	require.Equal(t, 4.99, shipped.Shipping)
	require.Equal(t, 15.79, shipped.Total)
}

func TestQuoteFor_EmptyCart(t *testing.T) {
	q := QuoteFor(DefaultConfig(), nil, model.DeliveryShip)
	require.Equal(t, 0.00, q.PurchaseSubtotal)
	require.Equal(t, 4.99, q.Total) // flat fee still applies when shipping is chosen
}

func TestQuoteFor_Rounding(t *testing.T) {
	cfg := Config{TaxRate: 0.08}
	items := []model.CartItem{
		{BookID: 1, Mode: model.ModePurchase, Quantity: 3, UnitPrice: 19.99},
	}
	q := QuoteFor(cfg, items, model.DeliveryPickup)
	require.Equal(t, 59.97, q.PurchaseSubtotal)
	require.Equal(t, 4.80, q.Tax)
	require.Equal(t, 64.77, q.Total)
}
