package booksvc

import (
	"context"
	"errors"
	"strings"

	"campusmarket/model"
	bookrepo "campusmarket/repository/book"
)

var (
	ErrBadInput = errors.New("invalid payload")
	ErrNotFound = bookrepo.ErrNotFound
)

type Service interface {
	Create(ctx context.Context, l *model.Listing) (*model.Listing, error)
	List(ctx context.Context) ([]model.Listing, error)
	Detail(ctx context.Context, id int64) (*model.Listing, error)
	MyListings(ctx context.Context, ownerID int64) ([]model.Listing, error)
	SetActive(ctx context.Context, id, ownerID int64, active bool) error
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, l *model.Listing) (*model.Listing, error) {
	if strings.TrimSpace(l.Title) == "" || l.OwnerID <= 0 {
		return nil, ErrBadInput
	}
	if l.Price < 0 || l.Deposit < 0 {
		return nil, ErrBadInput
	}
	if !l.ForSale && !l.ForBorrow && !l.ForSwap {
		return nil, ErrBadInput
	}
	if err := s.r.Create(ctx, l); err != nil {
		return nil, err
	}
	l.Active = true
	return l, nil
}

func (s *service) List(ctx context.Context) ([]model.Listing, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*model.Listing, error) {
	return s.r.Detail(ctx, id)
}

func (s *service) MyListings(ctx context.Context, ownerID int64) ([]model.Listing, error) {
	return s.r.ListByOwner(ctx, ownerID)
}

func (s *service) SetActive(ctx context.Context, id, ownerID int64, active bool) error {
	return s.r.SetActive(ctx, id, ownerID, active)
}
