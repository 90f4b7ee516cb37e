package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campusmarket/model"
	messagerepo "campusmarket/repository/message"
	"campusmarket/service/pricing"

	"github.com/oklog/ulid/v2"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotAuthenticated ErrCode = "NOT_AUTHENTICATED"
	ErrEmptyCart        ErrCode = "EMPTY_CART"
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

// Receipt is returned on a successful submit.
type Receipt struct {
	OrderID string       `json:"order_id"`
	Totals  model.Totals `json:"totals"`
	Swaps   []int64      `json:"swap_request_ids,omitempty"`
}

type Orders interface {
	SubmitCheckout(ctx context.Context, o *model.Order, swaps []*model.RequestRecord, notes []*model.Message) error
}

type Carts interface {
	Snapshot(userID int64) []model.CartItem
	Clear(userID int64)
}

type Service interface {
	// Quote prices the current cart for a delivery choice without mutating
	// anything.
	Quote(userID int64, delivery model.DeliveryOption) (pricing.Quote, error)

	// Submit validates the form against the cart snapshot. A non-empty
	// field error map means nothing was applied. On success the order, the
	// pending swap requests, and their notifications are committed together
	// and only then is the cart cleared; a storage failure leaves the cart
	// untouched.
	Submit(ctx context.Context, userID int64, form Form) (*Receipt, map[string]string, error)
}

type service struct {
	orders Orders
	carts  Carts
	cfg    pricing.Config
	log    *slog.Logger
}

func New(orders Orders, carts Carts, cfg pricing.Config, log *slog.Logger) Service {
	return &service{orders: orders, carts: carts, cfg: cfg, log: log}
}

func (s *service) Quote(userID int64, delivery model.DeliveryOption) (pricing.Quote, error) {
	if userID <= 0 {
		return pricing.Quote{}, makeErr(ErrNotAuthenticated)
	}
	return pricing.QuoteFor(s.cfg, s.carts.Snapshot(userID), delivery), nil
}

func (s *service) Submit(ctx context.Context, userID int64, form Form) (*Receipt, map[string]string, error) {
	if userID <= 0 {
		return nil, nil, makeErr(ErrNotAuthenticated)
	}

	snapshot := s.carts.Snapshot(userID)
	if len(snapshot) == 0 {
		return nil, nil, makeErr(ErrEmptyCart)
	}

	if errs := Validate(form, snapshot); len(errs) > 0 {
		return nil, errs, nil
	}

	quote := pricing.QuoteFor(s.cfg, snapshot, form.DeliveryOption)

	order := &model.Order{
		ID:             ulid.Make().String(),
		UserID:         userID,
		Totals:         quote.Totals(),
		PaymentMethod:  form.PaymentMethod,
		DeliveryOption: form.DeliveryOption,
		Status:         model.OrderPlaced,
	}

	var swaps []*model.RequestRecord
	var notes []*model.Message
	for _, it := range snapshot {
		switch it.Mode {
		case model.ModePurchase, model.ModeBorrow:
			order.Items = append(order.Items, model.OrderItem{
				BookID:    it.BookID,
				SellerID:  it.OwnerID,
				Mode:      it.Mode,
				Title:     it.Title,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Deposit:   it.Deposit,
				DueDate:   it.DueDate,
			})
		case model.ModeSwap:
			swaps = append(swaps, &model.RequestRecord{
				Kind:           model.KindSwap,
				InitiatorID:    userID,
				CounterpartyID: it.OwnerID,
				BookID:         it.BookID,
				Status:         model.RequestPending,
				OfferedBookIDs: it.OfferedBookIDs,
			})
			notes = append(notes, &model.Message{
				ID:         ulid.Make().String(),
				ChatID:     messagerepo.ChatKey(userID, it.OwnerID, it.BookID),
				SenderID:   userID,
				ReceiverID: it.OwnerID,
				BookID:     it.BookID,
				Text:       fmt.Sprintf("New swap offer for %q.", it.Title),
				Type:       model.MsgSwapOffer,
			})
		}
	}

	if err := s.orders.SubmitCheckout(ctx, order, swaps, notes); err != nil {
		// Nothing was committed; the cart stays as it was.
		if s.log != nil {
			s.log.Error("checkout submit failed", "err", err, "user_id", userID)
		}
		return nil, nil, err
	}

	s.carts.Clear(userID)

	rcpt := &Receipt{OrderID: order.ID, Totals: order.Totals}
	for _, sw := range swaps {
		rcpt.Swaps = append(rcpt.Swaps, sw.ID)
	}
	return rcpt, nil, nil
}
