package cart

import (
	"testing"
	"time"

	"campusmarket/model"

	"github.com/stretchr/testify/require"
)

func testBook() *model.Listing {
	return &model.Listing{
		ID: 1, OwnerID: 7, Title: "Clean Code", Author: "Martin",
		Price: 20, Deposit: 15,
		ForSale: true, ForBorrow: true, ForSwap: true,
	}
}

func TestAddItem_MergesSameBookAndMode(t *testing.T) {
	s := NewStore()

	first, err := s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, first.Quantity)

	second, err := s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 2, second.Quantity)

	require.Len(t, s.Snapshot(42), 1)
	require.Equal(t, 2, s.TotalItemCount(42))
}

func TestAddItem_SameBookDifferentModesAreSeparateLines(t *testing.T) {
	s := NewStore()

	_, err := s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)
	_, err = s.AddItem(42, testBook(), model.ModeBorrow, &BorrowDetails{Duration: model.DurationOneWeek}, nil)
	require.NoError(t, err)

	require.Len(t, s.Snapshot(42), 2)
}

func TestAddItem_RejectsModeTheListingDoesNotOffer(t *testing.T) {
	s := NewStore()

	b := testBook()
	b.ForBorrow = false
	_, err := s.AddItem(42, b, model.ModeBorrow, &BorrowDetails{Duration: model.DurationOneWeek}, nil)
	require.Equal(t, ErrModeUnavailable, Code(err))

	b = testBook()
	b.ForSale = false
	_, err = s.AddItem(42, b, model.ModePurchase, nil, nil)
	require.Equal(t, ErrModeUnavailable, Code(err))

	b = testBook()
	b.ForSwap = false
	_, err = s.AddItem(42, b, model.ModeSwap, nil, []int64{4})
	require.Equal(t, ErrModeUnavailable, Code(err))

	require.Empty(t, s.Snapshot(42))
}

func TestAddItem_RequiresSession(t *testing.T) {
	s := NewStore()
	_, err := s.AddItem(0, testBook(), model.ModePurchase, nil, nil)
	require.Error(t, err)
	require.Equal(t, ErrNotAuthenticated, Code(err))
}

func TestAddItem_FallbackUnitPrice(t *testing.T) {
	s := NewStore()
	b := testBook()
	b.Price = 0

	it, err := s.AddItem(42, b, model.ModePurchase, nil, nil)
	require.NoError(t, err)
	require.Equal(t, FallbackUnitPrice, it.UnitPrice)
}

func TestAddItem_BorrowDueDates(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		duration string
		wantDays int
	}{
		{model.DurationOneWeek, 7},
		{model.DurationTwoWeeks, 14},
		{model.DurationOneMonth, 30},
		{"a fortnight", 14}, // unrecognized falls back, not an error
		{"", 14},
	}
	for _, tc := range cases {
		s := NewStore()
		s.now = func() time.Time { return now }

		it, err := s.AddItem(42, testBook(), model.ModeBorrow, &BorrowDetails{Duration: tc.duration}, nil)
		require.NoError(t, err, tc.duration)
		require.NotNil(t, it.DueDate, tc.duration)
		require.Equal(t, now.AddDate(0, 0, tc.wantDays), *it.DueDate, tc.duration)
		require.Equal(t, 15.00, it.Deposit)
	}
}

func TestRemoveItem_DropsWholeLine(t *testing.T) {
	s := NewStore()
	it, err := s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)
	_, err = s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, s.TotalItemCount(42))

	require.NoError(t, s.RemoveItem(42, it.ID))
	require.Equal(t, 0, s.TotalItemCount(42))

	err = s.RemoveItem(42, it.ID)
	require.Equal(t, ErrItemNotFound, Code(err))
}

func TestUpdateQuantity_RejectsBelowOne(t *testing.T) {
	s := NewStore()
	it, err := s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)

	for _, qty := range []int{0, -1, -100} {
		got, err := s.UpdateQuantity(42, it.ID, qty)
		require.NoError(t, err)
		require.Equal(t, 1, got.Quantity, "qty=%d must be a no-op", qty)
	}

	got, err := s.UpdateQuantity(42, it.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, got.Quantity)
	require.Equal(t, 5, s.TotalItemCount(42))
}

func TestUpdateBorrowDetails(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }

	it, err := s.AddItem(42, testBook(), model.ModeBorrow, &BorrowDetails{Duration: model.DurationOneWeek}, nil)
	require.NoError(t, err)

	override := 25.0
	got, err := s.UpdateBorrowDetails(42, it.ID, BorrowDetails{
		Duration:        model.DurationOneMonth,
		DepositOverride: &override,
	})
	require.NoError(t, err)
	require.Equal(t, now.AddDate(0, 0, 30), *got.DueDate)
	require.Equal(t, 25.0, got.Deposit)
}

func TestUpdateBorrowDetails_RejectsNonBorrow(t *testing.T) {
	s := NewStore()
	it, err := s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)

	_, err = s.UpdateBorrowDetails(42, it.ID, BorrowDetails{Duration: model.DurationOneWeek})
	require.Equal(t, ErrNotBorrowItem, Code(err))
}

func TestQueries(t *testing.T) {
	s := NewStore()
	_, err := s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)
	_, err = s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)

	b2 := testBook()
	b2.ID = 2
	_, err = s.AddItem(42, b2, model.ModeBorrow, &BorrowDetails{Duration: model.DurationTwoWeeks}, nil)
	require.NoError(t, err)
	b3 := testBook()
	b3.ID = 3
	_, err = s.AddItem(42, b3, model.ModeSwap, nil, []int64{9})
	require.NoError(t, err)

	groups := s.GroupByMode(42)
	require.Len(t, groups[model.ModePurchase], 1)
	require.Len(t, groups[model.ModeBorrow], 1)
	require.Len(t, groups[model.ModeSwap], 1)

	counts := s.CountByMode(42)
	require.Equal(t, 2, counts[model.ModePurchase])
	require.Equal(t, 1, counts[model.ModeBorrow])
	require.Equal(t, 1, counts[model.ModeSwap])

	require.Equal(t, 4, s.TotalItemCount(42))
}

func TestClear_IsPerUser(t *testing.T) {
	s := NewStore()
	_, err := s.AddItem(42, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)
	_, err = s.AddItem(99, testBook(), model.ModePurchase, nil, nil)
	require.NoError(t, err)

	s.Clear(42)
	require.Empty(t, s.Snapshot(42))
	require.Equal(t, 1, s.TotalItemCount(99))
}
