package requestrepo

import (
	"context"
	"errors"

	"campusmarket/model"
	"campusmarket/util/database"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("request not found")

type Repo interface {
	Create(ctx context.Context, rec *model.RequestRecord) error
	ByID(ctx context.Context, id int64) (*model.RequestRecord, error)

	// Transition commits status from→to only if the row still holds the
	// `from` status. Returns false when a concurrent caller won the race.
	Transition(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error)

	ListByInitiator(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error)
	ListByCounterparty(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error)
	ListInvolving(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const requestCols = `id, kind, initiator_id, counterparty_id, book_id, status,
       duration, due_date, deposit, offered_book_ids, created_at, resolved_at, returned_at`

func (r *repo) Create(ctx context.Context, rec *model.RequestRecord) error {
	rec.Status = model.RequestPending
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO requests
			(kind, initiator_id, counterparty_id, book_id, status,
			 duration, due_date, deposit, offered_book_ids)
		VALUES ($1,$2,$3,$4,'PENDING',$5,$6,$7,$8)
		RETURNING id, created_at`,
		rec.Kind, rec.InitiatorID, rec.CounterpartyID, rec.BookID,
		rec.Duration, rec.DueDate, rec.Deposit, rec.OfferedBookIDs,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.RequestRecord, error) {
	var rec model.RequestRecord
	err := r.db.Pool.QueryRow(ctx, `
		SELECT `+requestCols+`
		FROM requests
		WHERE id = $1`, id).Scan(
		&rec.ID, &rec.Kind, &rec.InitiatorID, &rec.CounterpartyID, &rec.BookID,
		&rec.Status, &rec.Duration, &rec.DueDate, &rec.Deposit,
		&rec.OfferedBookIDs, &rec.CreatedAt, &rec.ResolvedAt, &rec.ReturnedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repo) Transition(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error) {
	// Compare-and-transition: the WHERE clause serializes racing callers,
	// the loser sees zero rows affected.
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE requests
		SET status = $3,
		    resolved_at = CASE WHEN $3 IN ('ACCEPTED','DECLINED') THEN NOW() ELSE resolved_at END,
		    returned_at = CASE WHEN $3 = 'RETURNED' THEN NOW() ELSE returned_at END
		WHERE id = $1
		  AND status = $2`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) ListByInitiator(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error) {
	return r.list(ctx, `initiator_id = $1`, userID, statuses)
}

func (r *repo) ListByCounterparty(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error) {
	return r.list(ctx, `counterparty_id = $1`, userID, statuses)
}

func (r *repo) ListInvolving(ctx context.Context, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error) {
	return r.list(ctx, `(initiator_id = $1 OR counterparty_id = $1)`, userID, statuses)
}

func (r *repo) list(ctx context.Context, where string, userID int64, statuses []model.RequestStatus) ([]model.RequestRecord, error) {
	q := `
		SELECT ` + requestCols + `
		FROM requests
		WHERE ` + where
	args := []any{userID}
	if len(statuses) > 0 {
		q += ` AND status = ANY($2)`
		ss := make([]string, len(statuses))
		for i, s := range statuses {
			ss[i] = string(s)
		}
		args = append(args, ss)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RequestRecord
	for rows.Next() {
		var rec model.RequestRecord
		if err := rows.Scan(
			&rec.ID, &rec.Kind, &rec.InitiatorID, &rec.CounterpartyID, &rec.BookID,
			&rec.Status, &rec.Duration, &rec.DueDate, &rec.Deposit,
			&rec.OfferedBookIDs, &rec.CreatedAt, &rec.ResolvedAt, &rec.ReturnedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
