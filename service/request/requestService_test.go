package request

import (
	"context"
	"testing"
	"time"

	"campusmarket/model"

	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	createFn     func(ctx context.Context, rec *model.RequestRecord) error
	byIDFn       func(ctx context.Context, id int64) (*model.RequestRecord, error)
	transitionFn func(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error)
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, rec *model.RequestRecord) error {
	if m.createFn == nil {
		rec.ID = 1
		return nil
	}
	return m.createFn(ctx, rec)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.RequestRecord, error) {
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Transition(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error) {
	if m.transitionFn == nil {
		return true, nil
	}
	return m.transitionFn(ctx, id, from, to)
}

func (m *mockRepo) ListByInitiator(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error) {
	return nil, nil
}

func (m *mockRepo) ListByCounterparty(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error) {
	return nil, nil
}

type mockBooks struct {
	detailFn func(ctx context.Context, id int64) (*model.Listing, error)
}

func (m *mockBooks) Detail(ctx context.Context, id int64) (*model.Listing, error) {
	if m.detailFn == nil {
		return &model.Listing{
			ID: id, OwnerID: 7, Title: "SICP", Deposit: 15,
			ForBorrow: true, ForSwap: true,
		}, nil
	}
	return m.detailFn(ctx, id)
}

type mockMessenger struct {
	sent []model.Message
	err  error
}

func (m *mockMessenger) Send(ctx context.Context, msg *model.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, *msg)
	return nil
}

func pendingBorrow() *model.RequestRecord {
	due := time.Now().AddDate(0, 0, 7)
	return &model.RequestRecord{
		ID: 10, Kind: model.KindBorrow,
		InitiatorID: 3, CounterpartyID: 7, BookID: 1,
		Status: model.RequestPending,
		DueDate: &due, Deposit: 15,
	}
}

func newSvc(r *mockRepo, m *mockMessenger) Service {
	return New(r, &mockBooks{}, m, nil)
}

func TestCreate_StartsPendingAndNotifies(t *testing.T) {
	ctx := context.Background()
	msgs := &mockMessenger{}
	svc := newSvc(&mockRepo{}, msgs)

	rec, err := svc.Create(ctx, 3, CreateInput{
		Kind:     model.KindBorrow,
		BookID:   1,
		Duration: model.DurationOneMonth,
	})
	require.NoError(t, err)
	require.Equal(t, model.RequestPending, rec.Status)
	require.Equal(t, int64(3), rec.InitiatorID)
	require.Equal(t, int64(7), rec.CounterpartyID)
	require.Equal(t, 15.0, rec.Deposit) // listing deposit when none given
	require.NotNil(t, rec.DueDate)

	require.Len(t, msgs.sent, 1)
	require.Equal(t, int64(7), msgs.sent[0].ReceiverID)
	require.Equal(t, model.MsgBorrowRequest, msgs.sent[0].Type)
}

func TestCreate_RejectsOwnBook(t *testing.T) {
	svc := newSvc(&mockRepo{}, &mockMessenger{})
	_, err := svc.Create(context.Background(), 7, CreateInput{Kind: model.KindBorrow, BookID: 1})
	require.Equal(t, ErrSelfRequest, Code(err))
}

func TestCreate_SwapNeedsOfferedBooks(t *testing.T) {
	svc := newSvc(&mockRepo{}, &mockMessenger{})
	_, err := svc.Create(context.Background(), 3, CreateInput{Kind: model.KindSwap, BookID: 1})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestCreate_RejectsModeTheListingDoesNotOffer(t *testing.T) {
	books := &mockBooks{detailFn: func(ctx context.Context, id int64) (*model.Listing, error) {
		return &model.Listing{ID: id, OwnerID: 7, Title: "SICP", ForSale: true}, nil
	}}
	svc := New(&mockRepo{}, books, &mockMessenger{}, nil)

	_, err := svc.Create(context.Background(), 3, CreateInput{Kind: model.KindBorrow, BookID: 1})
	require.Equal(t, ErrBadInput, Code(err))

	_, err = svc.Create(context.Background(), 3, CreateInput{Kind: model.KindSwap, BookID: 1, OfferedBookIDs: []int64{4}})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRespond_AcceptNotifiesInitiatorOnce(t *testing.T) {
	msgs := &mockMessenger{}
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.RequestRecord, error) {
			return pendingBorrow(), nil
		},
	}
	svc := newSvc(r, msgs)

	rec, err := svc.Respond(context.Background(), 10, 7, Accept)
	require.NoError(t, err)
	require.Equal(t, model.RequestAccepted, rec.Status)
	require.Len(t, msgs.sent, 1)
	require.Equal(t, int64(3), msgs.sent[0].ReceiverID)
}

func TestRespond_OnlyCounterpartyMayRespond(t *testing.T) {
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.RequestRecord, error) {
			return pendingBorrow(), nil
		},
	}
	svc := newSvc(r, &mockMessenger{})

	// initiator
	_, err := svc.Respond(context.Background(), 10, 3, Accept)
	require.Equal(t, ErrNotAllowed, Code(err))

	// unrelated third party
	_, err = svc.Respond(context.Background(), 10, 99, Decline)
	require.Equal(t, ErrNotAllowed, Code(err))
}

func TestRespond_ResolvedRecordConflicts(t *testing.T) {
	for _, st := range []model.RequestStatus{
		model.RequestAccepted, model.RequestDeclined,
		model.RequestBorrowed, model.RequestReturned,
	} {
		r := &mockRepo{
			byIDFn: func(ctx context.Context, id int64) (*model.RequestRecord, error) {
				rec := pendingBorrow()
				rec.Status = st
				return rec, nil
			},
		}
		svc := newSvc(r, &mockMessenger{})

		_, err := svc.Respond(context.Background(), 10, 7, Accept)
		require.Equal(t, ErrConflict, Code(err), "status=%s", st)
	}
}

func TestRespond_LosingRacerGetsConflict(t *testing.T) {
	// Record still reads as pending, but the compare-and-transition fails
	// because a concurrent caller committed first.
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.RequestRecord, error) {
			return pendingBorrow(), nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error) {
			return false, nil
		},
	}
	msgs := &mockMessenger{}
	svc := newSvc(r, msgs)

	_, err := svc.Respond(context.Background(), 10, 7, Decline)
	require.Equal(t, ErrConflict, Code(err))
	require.Empty(t, msgs.sent) // no notification for a failed transition
}

func TestHandOverAndReturn(t *testing.T) {
	state := pendingBorrow()
	state.Status = model.RequestAccepted
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.RequestRecord, error) {
			cp := *state
			return &cp, nil
		},
	}
	svc := newSvc(r, &mockMessenger{})
	ctx := context.Background()

	// borrower cannot hand over
	_, err := svc.HandOver(ctx, 10, 3)
	require.Equal(t, ErrNotAllowed, Code(err))

	rec, err := svc.HandOver(ctx, 10, 7)
	require.NoError(t, err)
	require.Equal(t, model.RequestBorrowed, rec.Status)
	state.Status = model.RequestBorrowed

	// lender cannot return
	_, err = svc.Return(ctx, 10, 7)
	require.Equal(t, ErrNotAllowed, Code(err))

	rec, err = svc.Return(ctx, 10, 3)
	require.NoError(t, err)
	require.Equal(t, model.RequestReturned, rec.Status)
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.RequestRecord, error) {
			return pendingBorrow(), nil
		},
	}
	svc := newSvc(r, &mockMessenger{err: context.DeadlineExceeded})

	rec, err := svc.Respond(context.Background(), 10, 7, Accept)
	require.NoError(t, err)
	require.Equal(t, model.RequestAccepted, rec.Status)
}

func TestGet_ThirdPartyMayNotRead(t *testing.T) {
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.RequestRecord, error) {
			return pendingBorrow(), nil
		},
	}
	svc := newSvc(r, &mockMessenger{})

	_, err := svc.Get(context.Background(), 10, 99)
	require.Equal(t, ErrNotAllowed, Code(err))

	rec, err := svc.Get(context.Background(), 10, 3)
	require.NoError(t, err)
	require.Equal(t, int64(10), rec.ID)
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 5)

	rec := pendingBorrow()
	rec.DueDate = &past

	rec.Status = model.RequestPending
	require.False(t, rec.IsOverdue(now), "pending is never overdue")

	rec.Status = model.RequestBorrowed
	require.True(t, rec.IsOverdue(now))
	require.Equal(t, -1, rec.DaysRemaining(now))

	rec.Status = model.RequestAccepted
	require.True(t, rec.IsOverdue(now))

	rec.DueDate = &future
	require.False(t, rec.IsOverdue(now))
	require.Equal(t, 5, rec.DaysRemaining(now))

	swap := &model.RequestRecord{Kind: model.KindSwap, Status: model.RequestAccepted}
	require.False(t, swap.IsOverdue(now))
}
