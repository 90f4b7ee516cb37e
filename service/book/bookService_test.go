package booksvc

import (
	"context"
	"testing"

	"campusmarket/model"

	"github.com/stretchr/testify/require"
)

type repoMock struct {
	createFn func(ctx context.Context, l *model.Listing) error
}

func (m *repoMock) Create(ctx context.Context, l *model.Listing) error {
	if m.createFn == nil {
		l.ID = 1
		return nil
	}
	return m.createFn(ctx, l)
}

func (m *repoMock) List(ctx context.Context) ([]model.Listing, error) { return nil, nil }

func (m *repoMock) ListByOwner(ctx context.Context, ownerID int64) ([]model.Listing, error) {
	return nil, nil
}

func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Listing, error) {
	return &model.Listing{ID: id}, nil
}

func (m *repoMock) SetActive(ctx context.Context, id, ownerID int64, active bool) error {
	return nil
}

func TestCreate_Validation(t *testing.T) {
	s := New(&repoMock{})
	ctx := context.Background()

	_, err := s.Create(ctx, &model.Listing{OwnerID: 1, ForSale: true})
	require.ErrorIs(t, err, ErrBadInput, "empty title")

	_, err = s.Create(ctx, &model.Listing{Title: "SICP", ForSale: true})
	require.ErrorIs(t, err, ErrBadInput, "missing owner")

	_, err = s.Create(ctx, &model.Listing{OwnerID: 1, Title: "SICP", ForSale: true, Price: -1})
	require.ErrorIs(t, err, ErrBadInput, "negative price")

	_, err = s.Create(ctx, &model.Listing{OwnerID: 1, Title: "SICP"})
	require.ErrorIs(t, err, ErrBadInput, "no transaction mode offered")
}

func TestCreate_Success(t *testing.T) {
	s := New(&repoMock{})

	l, err := s.Create(context.Background(), &model.Listing{
		OwnerID: 1, Title: "SICP", ForSale: true, ForSwap: true, Price: 25,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), l.ID)
	require.True(t, l.Active)
}
