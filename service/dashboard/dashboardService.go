// Package dashboard assembles the per-user view: listings, pending
// negotiation actions, active borrows, and transaction history. Enrichment
// of related records fans out concurrently and degrades per record — a
// failed book or user lookup substitutes a placeholder instead of failing
// the whole aggregation.
package dashboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"campusmarket/model"
)

const (
	UnknownBook = "Unknown Book"
	UnknownUser = "Unknown User"
)

type Requests interface {
	ListByInitiator(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error)
	ListByCounterparty(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error)
	ListInvolving(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error)
}

type Orders interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListSalesByUser(ctx context.Context, sellerID int64) ([]model.Order, error)
}

type Books interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Listing, error)
	Detail(ctx context.Context, id int64) (*model.Listing, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

// PendingAction is a pending request seen from the user's side. Needs
// NeedsResponse when the user is the counterparty; otherwise it is
// informational, awaiting the other side.
type PendingAction struct {
	Request       model.RequestRecord `json:"request"`
	NeedsResponse bool                `json:"needs_response"`
	BookTitle     string              `json:"book_title"`
	OtherParty    string              `json:"other_party"`
}

type ActiveBorrow struct {
	Request       model.RequestRecord `json:"request"`
	BookTitle     string              `json:"book_title"`
	LenderName    string              `json:"lender_name"`
	IsOverdue     bool                `json:"is_overdue"`
	DaysRemaining int                 `json:"days_remaining"`
}

// HistoryEntry is one completed transaction, tagged with the user's role in
// it: buyer/seller for orders, requester/provider for swaps,
// borrower/lender for returned borrows.
type HistoryEntry struct {
	Kind      string    `json:"kind"` // purchase | swap | borrow
	Role      string    `json:"role"`
	OrderID   string    `json:"order_id,omitempty"`
	RequestID int64     `json:"request_id,omitempty"`
	BookID    int64     `json:"book_id,omitempty"`
	BookTitle string    `json:"book_title,omitempty"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
}

type Summary struct {
	TotalListings         int `json:"total_listings"`
	ActiveListings        int `json:"active_listings"`
	CompletedTransactions int `json:"completed_transactions"`
	PendingTransactions   int `json:"pending_transactions"`

	// Best-effort derived figures, not ledger-backed: earnings sum the
	// purchase subtotals of orders containing the user's listings; swap
	// savings sum the list prices of books obtained via accepted swaps.
	EstimatedEarnings    float64 `json:"estimated_earnings"`
	EstimatedSwapSavings float64 `json:"estimated_swap_savings"`
}

type View struct {
	Listings       []model.Listing `json:"listings"`
	PendingActions []PendingAction `json:"pending_actions"`
	ActiveBorrows  []ActiveBorrow  `json:"active_borrows"`
	History        []HistoryEntry  `json:"history"`
	Summary        Summary         `json:"summary"`
}

type Service interface {
	Aggregate(ctx context.Context, userID int64) (*View, error)
}

type service struct {
	req   Requests
	ord   Orders
	books Books
	users Users
	log   *slog.Logger
	now   func() time.Time
}

func New(req Requests, ord Orders, books Books, users Users, log *slog.Logger) Service {
	return &service{req: req, ord: ord, books: books, users: users, log: log, now: time.Now}
}

func (s *service) Aggregate(ctx context.Context, userID int64) (*View, error) {
	v := &View{}
	now := s.now()

	listings, err := s.books.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	v.Listings = listings

	incoming, err := s.req.ListByCounterparty(ctx, userID, []model.RequestStatus{model.RequestPending})
	if err != nil {
		return nil, err
	}
	outgoing, err := s.req.ListByInitiator(ctx, userID, []model.RequestStatus{model.RequestPending})
	if err != nil {
		return nil, err
	}

	v.PendingActions = make([]PendingAction, 0, len(incoming)+len(outgoing))
	for _, rec := range incoming {
		v.PendingActions = append(v.PendingActions, PendingAction{Request: rec, NeedsResponse: true})
	}
	for _, rec := range outgoing {
		v.PendingActions = append(v.PendingActions, PendingAction{Request: rec, NeedsResponse: false})
	}

	borrows, err := s.req.ListByInitiator(ctx, userID, []model.RequestStatus{model.RequestAccepted, model.RequestBorrowed})
	if err != nil {
		return nil, err
	}
	for _, rec := range borrows {
		if rec.Kind != model.KindBorrow {
			continue
		}
		v.ActiveBorrows = append(v.ActiveBorrows, ActiveBorrow{
			Request:       rec,
			IsOverdue:     rec.IsOverdue(now),
			DaysRemaining: rec.DaysRemaining(now),
		})
	}

	if err := s.buildHistory(ctx, userID, v); err != nil {
		return nil, err
	}

	s.enrich(ctx, userID, v)

	v.Summary.TotalListings = len(listings)
	for _, l := range listings {
		if l.Active {
			v.Summary.ActiveListings++
		}
	}
	v.Summary.CompletedTransactions = len(v.History)
	v.Summary.PendingTransactions = len(v.PendingActions)

	return v, nil
}

func (s *service) buildHistory(ctx context.Context, userID int64, v *View) error {
	bought, err := s.ord.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, o := range bought {
		e := HistoryEntry{
			Kind: "purchase", Role: "buyer",
			OrderID: o.ID, Amount: o.Totals.Total, Date: o.CreatedAt,
		}
		if len(o.Items) > 0 {
			e.BookTitle = o.Items[0].Title // snapshot copy, no lookup needed
		}
		v.History = append(v.History, e)
	}

	sold, err := s.ord.ListSalesByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, o := range sold {
		if o.UserID == userID {
			continue // own order already listed as buyer
		}
		var amount float64
		for _, it := range o.Items {
			if it.SellerID == userID && it.Mode == model.ModePurchase {
				amount += it.UnitPrice * float64(it.Quantity)
			}
		}
		v.History = append(v.History, HistoryEntry{
			Kind: "purchase", Role: "seller",
			OrderID: o.ID, Amount: amount, Date: o.CreatedAt,
		})
		v.Summary.EstimatedEarnings += amount
	}

	// Swaps accepted and borrows returned, from both sides.
	done := []model.RequestStatus{model.RequestAccepted, model.RequestReturned}
	resolved, err := s.req.ListInvolving(ctx, userID, done)
	if err != nil {
		return err
	}

	add := func(rec model.RequestRecord, initiator bool) {
		date := rec.CreatedAt
		if rec.ResolvedAt != nil {
			date = *rec.ResolvedAt
		}
		switch {
		case rec.Kind == model.KindSwap && rec.Status == model.RequestAccepted:
			role := "provider"
			if initiator {
				role = "requester"
			}
			v.History = append(v.History, HistoryEntry{
				Kind: "swap", Role: role, RequestID: rec.ID,
				BookID: rec.BookID, Date: date,
			})
		case rec.Kind == model.KindBorrow && rec.Status == model.RequestReturned:
			role := "lender"
			if initiator {
				role = "borrower"
			}
			if rec.ReturnedAt != nil {
				date = *rec.ReturnedAt
			}
			v.History = append(v.History, HistoryEntry{
				Kind: "borrow", Role: role, RequestID: rec.ID,
				BookID: rec.BookID, Amount: rec.Deposit, Date: date,
			})
		}
	}
	for _, rec := range resolved {
		add(rec, rec.InitiatorID == userID)
	}

	sort.SliceStable(v.History, func(i, j int) bool {
		return v.History[i].Date.After(v.History[j].Date)
	})
	return nil
}

// enrich resolves book titles and other-party names for the pending and
// active sections. Lookups for different records run concurrently; each
// failure is logged and replaced with a placeholder, never propagated.
func (s *service) enrich(ctx context.Context, userID int64, v *View) {
	var wg sync.WaitGroup

	for i := range v.PendingActions {
		wg.Add(1)
		go func(pa *PendingAction) {
			defer wg.Done()
			pa.BookTitle = s.bookTitle(ctx, pa.Request.BookID)
			other := pa.Request.InitiatorID
			if other == userID {
				other = pa.Request.CounterpartyID
			}
			pa.OtherParty = s.userName(ctx, other)
		}(&v.PendingActions[i])
	}

	for i := range v.ActiveBorrows {
		wg.Add(1)
		go func(ab *ActiveBorrow) {
			defer wg.Done()
			ab.BookTitle = s.bookTitle(ctx, ab.Request.BookID)
			ab.LenderName = s.userName(ctx, ab.Request.CounterpartyID)
		}(&v.ActiveBorrows[i])
	}

	// Swap-savings estimate needs the swapped book's list price; a failed
	// lookup simply contributes nothing.
	var mu sync.Mutex
	for i := range v.History {
		h := v.History[i]
		if h.Kind != "swap" && h.Kind != "borrow" {
			continue
		}
		wg.Add(1)
		go func(idx int, h HistoryEntry) {
			defer wg.Done()
			title, price, ok := s.bookTitleAndPrice(ctx, h.BookID)
			mu.Lock()
			defer mu.Unlock()
			v.History[idx].BookTitle = title
			if ok && h.Kind == "swap" && h.Role == "requester" {
				v.Summary.EstimatedSwapSavings += price
			}
		}(i, h)
	}

	wg.Wait()
}

func (s *service) bookTitle(ctx context.Context, id int64) string {
	title, _, _ := s.bookTitleAndPrice(ctx, id)
	return title
}

func (s *service) bookTitleAndPrice(ctx context.Context, id int64) (string, float64, bool) {
	b, err := s.books.Detail(ctx, id)
	if err != nil {
		if s.log != nil {
			s.log.Warn("dashboard enrichment: book fetch failed", "book_id", id, "err", err)
		}
		return UnknownBook, 0, false
	}
	return b.Title, b.Price, true
}

func (s *service) userName(ctx context.Context, id int64) string {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		if s.log != nil {
			s.log.Warn("dashboard enrichment: user fetch failed", "user_id", id, "err", err)
		}
		return UnknownUser
	}
	return u.DisplayName()
}
