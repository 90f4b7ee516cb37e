package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusmarket/model"
	bookrepo "campusmarket/repository/book"
	messagerepo "campusmarket/repository/message"
	requestrepo "campusmarket/repository/request"
	"campusmarket/service/cart"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotAllowed   ErrCode = "NOT_AUTHORIZED"
	ErrConflict     ErrCode = "CONFLICT"
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrSelfRequest  ErrCode = "SELF_REQUEST"
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

type Decision string

const (
	Accept  Decision = "ACCEPT"
	Decline Decision = "DECLINE"
)

type Repo interface {
	Create(ctx context.Context, rec *model.RequestRecord) error
	ByID(ctx context.Context, id int64) (*model.RequestRecord, error)
	Transition(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error)
	ListByInitiator(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error)
	ListByCounterparty(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error)
}

type Books interface {
	Detail(ctx context.Context, id int64) (*model.Listing, error)
}

type Messenger interface {
	Send(ctx context.Context, m *model.Message) error
}

type CreateInput struct {
	Kind           model.RequestKind
	BookID         int64
	Duration       string  // borrow
	Deposit        float64 // borrow; 0 means use the listing's deposit
	OfferedBookIDs []int64 // swap
}

type Service interface {
	// Create opens a request against the book's owner; it always starts
	// PENDING and notifies the counterparty.
	Create(ctx context.Context, initiatorID int64, in CreateInput) (*model.RequestRecord, error)

	// Respond accepts or declines a pending request. Only the counterparty
	// may call it; a record no longer pending yields a conflict no matter
	// who calls.
	Respond(ctx context.Context, requestID, responderID int64, d Decision) (*model.RequestRecord, error)

	// HandOver marks an accepted borrow as handed to the borrower
	// (lender only).
	HandOver(ctx context.Context, requestID, lenderID int64) (*model.RequestRecord, error)

	// Return marks a borrowed book as returned (borrower only).
	Return(ctx context.Context, requestID, borrowerID int64) (*model.RequestRecord, error)

	Get(ctx context.Context, requestID, callerID int64) (*model.RequestRecord, error)
	Incoming(ctx context.Context, userID int64) ([]model.RequestRecord, error)
	Outgoing(ctx context.Context, userID int64) ([]model.RequestRecord, error)
}

type service struct {
	r   Repo
	b   Books
	m   Messenger
	log *slog.Logger
	now func() time.Time
}

func New(r Repo, b Books, m Messenger, log *slog.Logger) Service {
	return &service{r: r, b: b, m: m, log: log, now: time.Now}
}

func (s *service) Create(ctx context.Context, initiatorID int64, in CreateInput) (*model.RequestRecord, error) {
	if initiatorID <= 0 || in.BookID <= 0 {
		return nil, makeErr(ErrBadInput)
	}
	if in.Kind != model.KindBorrow && in.Kind != model.KindSwap {
		return nil, makeErr(ErrBadInput)
	}
	if in.Kind == model.KindSwap && len(in.OfferedBookIDs) == 0 {
		return nil, makeErr(ErrBadInput)
	}

	book, err := s.b.Detail(ctx, in.BookID)
	if err != nil {
		if errors.Is(err, bookrepo.ErrNotFound) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if book.OwnerID == initiatorID {
		return nil, makeErr(ErrSelfRequest)
	}
	if in.Kind == model.KindBorrow && !book.ForBorrow {
		return nil, makeErr(ErrBadInput)
	}
	if in.Kind == model.KindSwap && !book.ForSwap {
		return nil, makeErr(ErrBadInput)
	}

	rec := &model.RequestRecord{
		Kind:           in.Kind,
		InitiatorID:    initiatorID,
		CounterpartyID: book.OwnerID,
		BookID:         in.BookID,
		Status:         model.RequestPending,
	}
	if in.Kind == model.KindBorrow {
		rec.Duration = in.Duration
		due := cart.DueDateFor(in.Duration, s.now())
		rec.DueDate = &due
		rec.Deposit = in.Deposit
		if rec.Deposit <= 0 {
			rec.Deposit = book.Deposit
		}
	} else {
		rec.OfferedBookIDs = in.OfferedBookIDs
	}

	if err := s.r.Create(ctx, rec); err != nil {
		return nil, err
	}

	msgType := model.MsgBorrowRequest
	text := fmt.Sprintf("New borrow request for %q (%s).", book.Title, rec.Duration)
	if in.Kind == model.KindSwap {
		msgType = model.MsgSwapOffer
		text = fmt.Sprintf("New swap offer for %q.", book.Title)
	}
	s.notify(ctx, rec.InitiatorID, rec.CounterpartyID, rec.BookID, text, msgType)

	return rec, nil
}

func (s *service) Respond(ctx context.Context, requestID, responderID int64, d Decision) (*model.RequestRecord, error) {
	if d != Accept && d != Decline {
		return nil, makeErr(ErrBadInput)
	}

	rec, err := s.r.ByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requestrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if responderID != rec.CounterpartyID {
		return nil, makeErr(ErrNotAllowed)
	}
	if rec.Status != model.RequestPending {
		return nil, makeErr(ErrConflict)
	}

	to := model.RequestAccepted
	if d == Decline {
		to = model.RequestDeclined
	}

	// Commit only if still pending; the losing side of a race gets a
	// conflict instead of double-applying the transition.
	ok, err := s.r.Transition(ctx, requestID, model.RequestPending, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrConflict)
	}
	rec.Status = to
	now := s.now()
	rec.ResolvedAt = &now

	verb := "accepted"
	if d == Decline {
		verb = "declined"
	}
	noun := "borrow request"
	if rec.Kind == model.KindSwap {
		noun = "swap offer"
	}
	s.notify(ctx, rec.CounterpartyID, rec.InitiatorID, rec.BookID,
		fmt.Sprintf("Your %s was %s.", noun, verb), model.MsgRequestUpdate)

	return rec, nil
}

func (s *service) HandOver(ctx context.Context, requestID, lenderID int64) (*model.RequestRecord, error) {
	rec, err := s.loadBorrow(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if lenderID != rec.CounterpartyID {
		return nil, makeErr(ErrNotAllowed)
	}
	if rec.Status != model.RequestAccepted {
		return nil, makeErr(ErrConflict)
	}

	ok, err := s.r.Transition(ctx, requestID, model.RequestAccepted, model.RequestBorrowed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrConflict)
	}
	rec.Status = model.RequestBorrowed
	return rec, nil
}

func (s *service) Return(ctx context.Context, requestID, borrowerID int64) (*model.RequestRecord, error) {
	rec, err := s.loadBorrow(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if borrowerID != rec.InitiatorID {
		return nil, makeErr(ErrNotAllowed)
	}
	if rec.Status != model.RequestBorrowed {
		return nil, makeErr(ErrConflict)
	}

	ok, err := s.r.Transition(ctx, requestID, model.RequestBorrowed, model.RequestReturned)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrConflict)
	}
	rec.Status = model.RequestReturned
	now := s.now()
	rec.ReturnedAt = &now

	s.notify(ctx, rec.InitiatorID, rec.CounterpartyID, rec.BookID,
		"The borrowed book was returned.", model.MsgRequestUpdate)

	return rec, nil
}

func (s *service) Get(ctx context.Context, requestID, callerID int64) (*model.RequestRecord, error) {
	rec, err := s.r.ByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requestrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if callerID != rec.InitiatorID && callerID != rec.CounterpartyID {
		return nil, makeErr(ErrNotAllowed)
	}
	return rec, nil
}

func (s *service) Incoming(ctx context.Context, userID int64) ([]model.RequestRecord, error) {
	return s.r.ListByCounterparty(ctx, userID, nil)
}

func (s *service) Outgoing(ctx context.Context, userID int64) ([]model.RequestRecord, error) {
	return s.r.ListByInitiator(ctx, userID, nil)
}

func (s *service) loadBorrow(ctx context.Context, requestID int64) (*model.RequestRecord, error) {
	rec, err := s.r.ByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requestrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if rec.Kind != model.KindBorrow {
		return nil, makeErr(ErrBadInput)
	}
	return rec, nil
}

// notify emits exactly one chat message per transition. A messaging failure
// is logged and never rolls back the transition.
func (s *service) notify(ctx context.Context, senderID, receiverID, bookID int64, text string, t model.MessageType) {
	m := &model.Message{
		ChatID:     messagerepo.ChatKey(senderID, receiverID, bookID),
		SenderID:   senderID,
		ReceiverID: receiverID,
		BookID:     bookID,
		Text:       text,
		Type:       t,
	}
	if err := s.m.Send(ctx, m); err != nil && s.log != nil {
		s.log.Error("request notification failed", "err", err, "book_id", bookID, "receiver", receiverID)
	}
}
