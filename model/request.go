// model/request.go
package model

import "time"

type RequestKind string

const (
	KindBorrow RequestKind = "BORROW"
	KindSwap   RequestKind = "SWAP"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestDeclined RequestStatus = "DECLINED"
	RequestBorrowed RequestStatus = "BORROWED"
	RequestReturned RequestStatus = "RETURNED"
)

// RequestRecord is the negotiation entity behind both borrow requests and
// swap offers. The initiator asks; the counterparty (the book's owner) alone
// may accept or decline. DECLINED and RETURNED are terminal; for swaps
// ACCEPTED is terminal too, coordination after that happens out of band.
type RequestRecord struct {
	ID             int64         `json:"id"`
	Kind           RequestKind   `json:"kind"`
	InitiatorID    int64         `json:"initiator_id"`
	CounterpartyID int64         `json:"counterparty_id"`
	BookID         int64         `json:"book_id"`
	Status         RequestStatus `json:"status"`

	// Borrow payload.
	Duration string     `json:"duration,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Deposit  float64    `json:"deposit,omitempty"`

	// Swap payload.
	OfferedBookIDs []int64 `json:"offered_book_ids,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// Terminal reports whether no further transition is legal.
func (r *RequestRecord) Terminal() bool {
	switch r.Status {
	case RequestDeclined, RequestReturned:
		return true
	case RequestAccepted:
		return r.Kind == KindSwap
	}
	return false
}

// IsOverdue is a display flag only; nothing auto-expires a request.
func (r *RequestRecord) IsOverdue(now time.Time) bool {
	if r.Kind != KindBorrow || r.DueDate == nil {
		return false
	}
	if r.Status != RequestAccepted && r.Status != RequestBorrowed {
		return false
	}
	return now.After(*r.DueDate)
}

// DaysRemaining is negative once the due date has passed.
func (r *RequestRecord) DaysRemaining(now time.Time) int {
	if r.Kind != KindBorrow || r.DueDate == nil {
		return 0
	}
	return int(r.DueDate.Sub(now).Hours() / 24)
}
