package cart

import (
	"errors"
	"sync"
	"time"

	"campusmarket/model"

	"github.com/google/uuid"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotAuthenticated ErrCode = "NOT_AUTHENTICATED"
	ErrItemNotFound     ErrCode = "ITEM_NOT_FOUND"
	ErrNotBorrowItem    ErrCode = "NOT_BORROW_ITEM"
	ErrModeUnavailable  ErrCode = "MODE_UNAVAILABLE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// FallbackUnitPrice is used when a listing carries no purchase price.
const FallbackUnitPrice = 10.00

const defaultBorrowDays = 14

// durationDays maps a borrow duration label to a day offset. Unrecognized
// labels fall back to two weeks; that is the documented default, not an
// error.
func durationDays(duration string) int {
	switch duration {
	case model.DurationOneWeek:
		return 7
	case model.DurationTwoWeeks:
		return 14
	case model.DurationOneMonth:
		return 30
	default:
		return defaultBorrowDays
	}
}

// DueDateFor derives a borrow due date from a duration label, measured from
// the moment the item enters or updates in the cart.
func DueDateFor(duration string, from time.Time) time.Time {
	return from.AddDate(0, 0, durationDays(duration))
}

// BorrowDetails are the caller-supplied knobs for a borrow line.
type BorrowDetails struct {
	Duration        string
	DepositOverride *float64
}

func modeOffered(book *model.Listing, mode model.TransactionMode) bool {
	switch mode {
	case model.ModePurchase:
		return book.ForSale
	case model.ModeBorrow:
		return book.ForBorrow
	case model.ModeSwap:
		return book.ForSwap
	}
	return false
}

// Store holds one in-memory cart per user. A cart is owned by its session
// and is never mutated concurrently by two callers for the same user; the
// mutex only guards the map across users.
type Store struct {
	mu    sync.Mutex
	carts map[int64][]*model.CartItem
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{carts: make(map[int64][]*model.CartItem), now: time.Now}
}

// AddItem merges on (bookId, mode): adding the same pair again bumps the
// quantity by one. The listing must offer the requested mode. A new purchase
// line falls back to FallbackUnitPrice when the listing has no price; a new
// borrow line derives its due date from the requested duration. Swap details
// carry the offered book ids.
func (s *Store) AddItem(userID int64, book *model.Listing, mode model.TransactionMode, details *BorrowDetails, offeredBookIDs []int64) (*model.CartItem, error) {
	if userID <= 0 {
		return nil, makeErr(ErrNotAuthenticated)
	}
	if !modeOffered(book, mode) {
		return nil, makeErr(ErrModeUnavailable)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.carts[userID] {
		if it.BookID == book.ID && it.Mode == mode {
			it.Quantity++
			cp := *it
			return &cp, nil
		}
	}

	now := s.now()
	it := &model.CartItem{
		ID:       uuid.NewString(),
		BookID:   book.ID,
		Mode:     mode,
		Quantity: 1,
		OwnerID:  book.OwnerID,
		Title:    book.Title,
		Author:   book.Author,
		CoverURL: book.CoverURL,
		AddedAt:  now,
	}

	switch mode {
	case model.ModePurchase:
		it.UnitPrice = book.Price
		if it.UnitPrice <= 0 {
			it.UnitPrice = FallbackUnitPrice
		}
	case model.ModeBorrow:
		it.Deposit = book.Deposit
		if details != nil {
			it.Duration = details.Duration
			if details.DepositOverride != nil {
				it.Deposit = *details.DepositOverride
			}
		}
		due := DueDateFor(it.Duration, now)
		it.DueDate = &due
	case model.ModeSwap:
		it.OfferedBookIDs = offeredBookIDs
	}

	s.carts[userID] = append(s.carts[userID], it)
	cp := *it
	return &cp, nil
}

func (s *Store) RemoveItem(userID int64, itemID string) error {
	if userID <= 0 {
		return makeErr(ErrNotAuthenticated)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i, it := range items {
		if it.ID == itemID {
			s.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return makeErr(ErrItemNotFound)
}

// UpdateQuantity rejects qty < 1 as a no-op: the item stays unchanged, the
// cart never holds a zero or negative quantity line.
func (s *Store) UpdateQuantity(userID int64, itemID string, qty int) (*model.CartItem, error) {
	if userID <= 0 {
		return nil, makeErr(ErrNotAuthenticated)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.find(userID, itemID)
	if err != nil {
		return nil, err
	}
	if qty >= 1 {
		it.Quantity = qty
	}
	cp := *it
	return &cp, nil
}

// UpdateBorrowDetails is legal only on a borrow line; it recomputes the due
// date from the new duration.
func (s *Store) UpdateBorrowDetails(userID int64, itemID string, details BorrowDetails) (*model.CartItem, error) {
	if userID <= 0 {
		return nil, makeErr(ErrNotAuthenticated)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.find(userID, itemID)
	if err != nil {
		return nil, err
	}
	if it.Mode != model.ModeBorrow {
		return nil, makeErr(ErrNotBorrowItem)
	}

	it.Duration = details.Duration
	due := DueDateFor(details.Duration, s.now())
	it.DueDate = &due
	if details.DepositOverride != nil {
		it.Deposit = *details.DepositOverride
	}
	cp := *it
	return &cp, nil
}

// Clear empties the user's cart. Only the checkout orchestrator calls this,
// after the order has been committed.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

// Snapshot returns copies of the user's cart lines.
func (s *Store) Snapshot(userID int64) []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	out := make([]model.CartItem, len(items))
	for i, it := range items {
		out[i] = *it
	}
	return out
}

func (s *Store) GroupByMode(userID int64) map[model.TransactionMode][]model.CartItem {
	out := make(map[model.TransactionMode][]model.CartItem)
	for _, it := range s.Snapshot(userID) {
		out[it.Mode] = append(out[it.Mode], it)
	}
	return out
}

func (s *Store) CountByMode(userID int64) map[model.TransactionMode]int {
	out := make(map[model.TransactionMode]int)
	for _, it := range s.Snapshot(userID) {
		out[it.Mode] += it.Quantity
	}
	return out
}

// TotalItemCount sums quantities, not distinct lines.
func (s *Store) TotalItemCount(userID int64) int {
	var n int
	for _, it := range s.Snapshot(userID) {
		n += it.Quantity
	}
	return n
}

func (s *Store) find(userID int64, itemID string) (*model.CartItem, error) {
	for _, it := range s.carts[userID] {
		if it.ID == itemID {
			return it, nil
		}
	}
	return nil, makeErr(ErrItemNotFound)
}
