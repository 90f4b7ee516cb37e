package bookrepo

import (
	"context"
	"errors"

	"campusmarket/model"
	"campusmarket/util/database"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("listing not found")

type Repo interface {
	Create(ctx context.Context, l *model.Listing) error
	List(ctx context.Context) ([]model.Listing, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Listing, error)
	Detail(ctx context.Context, id int64) (*model.Listing, error)
	SetActive(ctx context.Context, id, ownerID int64, active bool) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const listingCols = `id, owner_id, title, author, category, cover_url, price, deposit,
       for_sale, for_borrow, for_swap, active, created_at`

func (r *repo) Create(ctx context.Context, l *model.Listing) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO listings
			(owner_id, title, author, category, cover_url, price, deposit,
			 for_sale, for_borrow, for_swap, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,TRUE)
		RETURNING id, created_at`,
		l.OwnerID, l.Title, l.Author, l.Category, l.CoverURL, l.Price, l.Deposit,
		l.ForSale, l.ForBorrow, l.ForSwap,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *repo) List(ctx context.Context) ([]model.Listing, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+listingCols+`
		FROM listings
		WHERE active
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Listing, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+listingCols+`
		FROM listings
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Listing, error) {
	var l model.Listing
	err := r.db.Pool.QueryRow(ctx, `
		SELECT `+listingCols+`
		FROM listings
		WHERE id = $1`, id).Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Author, &l.Category, &l.CoverURL,
		&l.Price, &l.Deposit, &l.ForSale, &l.ForBorrow, &l.ForSwap,
		&l.Active, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repo) SetActive(ctx context.Context, id, ownerID int64, active bool) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE listings
		SET active = $3
		WHERE id = $1 AND owner_id = $2`, id, ownerID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanListings(rows pgx.Rows) ([]model.Listing, error) {
	var out []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Title, &l.Author, &l.Category, &l.CoverURL,
			&l.Price, &l.Deposit, &l.ForSale, &l.ForBorrow, &l.ForSwap,
			&l.Active, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
