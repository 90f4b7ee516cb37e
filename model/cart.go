// model/cart.go
package model

import "time"

type TransactionMode string

const (
	ModePurchase TransactionMode = "PURCHASE"
	ModeBorrow   TransactionMode = "BORROW"
	ModeSwap     TransactionMode = "SWAP"
)

// BorrowDuration values accepted from clients. Anything else falls back to
// the two-week window when a due date is derived.
const (
	DurationOneWeek  = "1 week"
	DurationTwoWeeks = "2 weeks"
	DurationOneMonth = "1 month"
)

// CartItem is one cart line. The cart holds at most one line per
// (BookID, Mode) pair; adding the same pair again bumps Quantity.
//
// UnitPrice is meaningful only for PURCHASE lines. Deposit, Duration and
// DueDate are set iff Mode == BORROW. OfferedBookIDs is set iff
// Mode == SWAP. Title/Author/CoverURL/OwnerID are denormalized display
// copies, not authoritative.
type CartItem struct {
	ID       string          `json:"id"`
	BookID   int64           `json:"book_id"`
	Mode     TransactionMode `json:"mode"`
	Quantity int             `json:"quantity"`

	UnitPrice float64 `json:"unit_price,omitempty"`

	Deposit  float64    `json:"deposit,omitempty"`
	Duration string     `json:"duration,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`

	OfferedBookIDs []int64 `json:"offered_book_ids,omitempty"`

	OwnerID  int64  `json:"owner_id"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`

	AddedAt time.Time `json:"added_at"`
}
