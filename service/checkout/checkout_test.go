package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"campusmarket/model"
	"campusmarket/service/pricing"

	"github.com/stretchr/testify/require"
)

type mockOrders struct {
	submitFn func(ctx context.Context, o *model.Order, swaps []*model.RequestRecord, notes []*model.Message) error
	calls    atomic.Int64
}

func (m *mockOrders) SubmitCheckout(ctx context.Context, o *model.Order, swaps []*model.RequestRecord, notes []*model.Message) error {
	m.calls.Add(1)
	if m.submitFn == nil {
		for i, sw := range swaps {
			sw.ID = int64(100 + i)
		}
		return nil
	}
	return m.submitFn(ctx, o, swaps, notes)
}

type mockCarts struct {
	items   []model.CartItem
	cleared bool
}

func (m *mockCarts) Snapshot(userID int64) []model.CartItem { return m.items }
func (m *mockCarts) Clear(userID int64)                     { m.cleared = true }

func validForm() Form {
	return Form{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@campus.edu",
		DeliveryOption: model.DeliveryPickup,
		PaymentMethod:  model.PaymentPickup,
	}
}

func mixedCart() []model.CartItem {
	return []model.CartItem{
		{ID: "a", BookID: 1, Mode: model.ModePurchase, Quantity: 2, UnitPrice: 20, OwnerID: 7, Title: "Clean Code"},
		{ID: "b", BookID: 2, Mode: model.ModeBorrow, Quantity: 1, Deposit: 15, OwnerID: 8, Title: "SICP"},
		{ID: "c", BookID: 3, Mode: model.ModeSwap, Quantity: 1, OwnerID: 9, Title: "TAPL", OfferedBookIDs: []int64{4}},
	}
}

func TestValidate_AddressBlockIffShip_TermsIffBorrow(t *testing.T) {
	borrow := []model.CartItem{{Mode: model.ModeBorrow, Quantity: 1}}
	purchase := []model.CartItem{{Mode: model.ModePurchase, Quantity: 1}}

	cases := []struct {
		name      string
		delivery  model.DeliveryOption
		cart      []model.CartItem
		wantAddr  bool
		wantTerms bool
	}{
		{"pickup, no borrow", model.DeliveryPickup, purchase, false, false},
		{"pickup, borrow", model.DeliveryPickup, borrow, false, true},
		{"ship, no borrow", model.DeliveryShip, purchase, true, false},
		{"ship, borrow", model.DeliveryShip, borrow, true, true},
	}
	for _, tc := range cases {
		form := validForm()
		form.DeliveryOption = tc.delivery

		errs := Validate(form, tc.cart)
		_, addr := errs["address"]
		_, zip := errs["zipCode"]
		_, terms := errs["agreeToTerms"]
		require.Equal(t, tc.wantAddr, addr, tc.name)
		require.Equal(t, tc.wantAddr, zip, tc.name)
		require.Equal(t, tc.wantTerms, terms, tc.name)
	}
}

func TestValidate_AlwaysRequiredFields(t *testing.T) {
	errs := Validate(Form{DeliveryOption: model.DeliveryPickup, PaymentMethod: model.PaymentPickup}, nil)
	require.Contains(t, errs, "firstName")
	require.Contains(t, errs, "lastName")
	require.Contains(t, errs, "email")
}

func TestValidate_EmailAndZipPatterns(t *testing.T) {
	form := validForm()
	form.Email = "not-an-email"
	errs := Validate(form, nil)
	require.Contains(t, errs, "email")

	form = validForm()
	form.DeliveryOption = model.DeliveryShip
	form.Address, form.City, form.State = "1 Main St", "Springfield", "IL"

	for zip, ok := range map[string]bool{
		"62704":      true,
		"62704-1234": true,
		"6270":       false,
		"abcde":      false,
		"62704-12":   false,
	} {
		form.ZipCode = zip
		_, bad := Validate(form, nil)["zipCode"]
		require.Equal(t, !ok, bad, "zip=%s", zip)
	}
}

func TestValidate_CardFieldsIffCard(t *testing.T) {
	form := validForm()
	form.PaymentMethod = model.PaymentCard
	errs := Validate(form, nil)
	require.Contains(t, errs, "cardName")
	require.Contains(t, errs, "cardNumber")
	require.Contains(t, errs, "cardExpiry")
	require.Contains(t, errs, "cardCvc")

	form.CardName = "Ada Lovelace"
	form.CardNumber = "4242 4242 4242 4242"
	form.CardExpiry = "09/27"
	form.CardCvc = "123"
	require.Empty(t, Validate(form, nil))

	form.CardExpiry = "13/27"
	require.Contains(t, Validate(form, nil), "cardExpiry")
	form.CardExpiry = "09/27"
	form.CardNumber = "4242"
	require.Contains(t, Validate(form, nil), "cardNumber")
}

func TestSubmit_ValidationFailureAppliesNothing(t *testing.T) {
	orders := &mockOrders{}
	carts := &mockCarts{items: mixedCart()}
	svc := New(orders, carts, pricing.DefaultConfig(), nil)

	form := validForm()
	form.Email = ""

	rcpt, errs, err := svc.Submit(context.Background(), 42, form)
	require.NoError(t, err)
	require.Nil(t, rcpt)
	require.Contains(t, errs, "email")
	require.Zero(t, orders.calls.Load())
	require.False(t, carts.cleared)
}

func TestSubmit_Success(t *testing.T) {
	var gotOrder *model.Order
	var gotSwaps []*model.RequestRecord
	var gotNotes []*model.Message
	orders := &mockOrders{
		submitFn: func(ctx context.Context, o *model.Order, swaps []*model.RequestRecord, notes []*model.Message) error {
			gotOrder, gotSwaps, gotNotes = o, swaps, notes
			return nil
		},
	}
	carts := &mockCarts{items: mixedCart()}
	svc := New(orders, carts, pricing.DefaultConfig(), nil)

	form := validForm()
	form.AgreeToTerms = true // cart holds a borrow line

	rcpt, errs, err := svc.Submit(context.Background(), 42, form)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.NotNil(t, rcpt)
	require.NotEmpty(t, rcpt.OrderID)
	require.True(t, carts.cleared)

	// order snapshots purchase + borrow lines only
	require.Len(t, gotOrder.Items, 2)
	require.Equal(t, 40.00, gotOrder.Totals.PurchaseSubtotal)
	require.Equal(t, 15.00, gotOrder.Totals.BorrowDeposits)
	require.Equal(t, 3.20, gotOrder.Totals.Tax)

	// each swap line becomes one pending request plus one notification
	require.Len(t, gotSwaps, 1)
	require.Equal(t, model.RequestPending, gotSwaps[0].Status)
	require.Equal(t, int64(42), gotSwaps[0].InitiatorID)
	require.Equal(t, int64(9), gotSwaps[0].CounterpartyID)
	require.Len(t, gotNotes, 1)
	require.Equal(t, int64(9), gotNotes[0].ReceiverID)
}

func TestSubmit_StorageFailureKeepsCart(t *testing.T) {
	orders := &mockOrders{
		submitFn: func(ctx context.Context, o *model.Order, swaps []*model.RequestRecord, notes []*model.Message) error {
			return errors.New("db down")
		},
	}
	carts := &mockCarts{items: mixedCart()}
	svc := New(orders, carts, pricing.DefaultConfig(), nil)

	form := validForm()
	form.AgreeToTerms = true

	rcpt, errs, err := svc.Submit(context.Background(), 42, form)
	require.Error(t, err)
	require.Nil(t, rcpt)
	require.Empty(t, errs)
	require.False(t, carts.cleared)
}

func TestSubmit_EmptyCart(t *testing.T) {
	svc := New(&mockOrders{}, &mockCarts{}, pricing.DefaultConfig(), nil)
	_, _, err := svc.Submit(context.Background(), 42, validForm())
	require.Equal(t, ErrEmptyCart, Code(err))
}

func TestQuote_ShipVsPickup(t *testing.T) {
	carts := &mockCarts{items: []model.CartItem{
		{Mode: model.ModePurchase, Quantity: 1, UnitPrice: 20},
	}}
	svc := New(&mockOrders{}, carts, pricing.DefaultConfig(), nil)

	q, err := svc.Quote(42, model.DeliveryShip)
	require.NoError(t, err)
	require.Equal(t, 4.99, q.Shipping)

	q, err = svc.Quote(42, model.DeliveryPickup)
	require.NoError(t, err)
	require.Equal(t, 0.00, q.Shipping)
}

func TestSubmit_ConcurrentCheckoutsGetDistinctOrderIDs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)
	orders := &mockOrders{submitFn: func(ctx context.Context, o *model.Order, swaps []*model.RequestRecord, notes []*model.Message) error {
		mu.Lock()
		seen[o.ID]++
		mu.Unlock()
		return nil
	}}
	carts := &mockCarts{items: []model.CartItem{
		{ID: "a", BookID: 1, Mode: model.ModePurchase, Quantity: 1, UnitPrice: 20, OwnerID: 7, Title: "Clean Code"},
	}}
	svc := New(orders, carts, pricing.DefaultConfig(), nil)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				rcpt, errs, err := svc.Submit(context.Background(), 42, validForm())
				require.NoError(t, err)
				require.Empty(t, errs)
				require.NotEmpty(t, rcpt.OrderID)
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	for id, n := range seen {
		require.Equal(t, 1, n, id)
	}
}
