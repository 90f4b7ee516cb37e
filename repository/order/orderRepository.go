package orderrepo

import (
	"context"
	"errors"

	"campusmarket/model"
	"campusmarket/util/database"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("order not found")

type Repo interface {
	// SubmitCheckout writes the order, its item snapshot, any swap
	// RequestRecords not already pending, and their notification messages
	// in one transaction. Swap records that already have a PENDING row for
	// the same (initiator, counterparty, book) are reused, not duplicated;
	// their notification is skipped.
	SubmitCheckout(ctx context.Context, o *model.Order, swaps []*model.RequestRecord, notes []*model.Message) error

	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListSalesByUser(ctx context.Context, sellerID int64) ([]model.Order, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) SubmitCheckout(ctx context.Context, o *model.Order, swaps []*model.RequestRecord, notes []*model.Message) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders
			(id, user_id, purchase_subtotal, borrow_deposits, shipping, tax, total,
			 payment_method, delivery_option, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		o.ID, o.UserID,
		o.Totals.PurchaseSubtotal, o.Totals.BorrowDeposits,
		o.Totals.Shipping, o.Totals.Tax, o.Totals.Total,
		o.PaymentMethod, o.DeliveryOption, o.Status,
	).Scan(&o.CreatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err = tx.Exec(ctx, `
			INSERT INTO order_items
				(order_id, book_id, seller_id, mode, title, quantity, unit_price, deposit, due_date)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			o.ID, it.BookID, it.SellerID, it.Mode, it.Title,
			it.Quantity, it.UnitPrice, it.Deposit, it.DueDate,
		); err != nil {
			return err
		}
	}

	for i, rec := range swaps {
		var existing int64
		err = tx.QueryRow(ctx, `
			SELECT id FROM requests
			WHERE kind = 'SWAP'
			  AND initiator_id = $1 AND counterparty_id = $2 AND book_id = $3
			  AND status = 'PENDING'
			FOR UPDATE`, rec.InitiatorID, rec.CounterpartyID, rec.BookID).Scan(&existing)
		switch {
		case err == nil:
			rec.ID = existing
			rec.Status = model.RequestPending
			continue
		case errors.Is(err, pgx.ErrNoRows):
			// fall through to insert
		default:
			return err
		}

		rec.Status = model.RequestPending
		if err = tx.QueryRow(ctx, `
			INSERT INTO requests
				(kind, initiator_id, counterparty_id, book_id, status, offered_book_ids)
			VALUES ('SWAP',$1,$2,$3,'PENDING',$4)
			RETURNING id, created_at`,
			rec.InitiatorID, rec.CounterpartyID, rec.BookID, rec.OfferedBookIDs,
		).Scan(&rec.ID, &rec.CreatedAt); err != nil {
			return err
		}

		if i < len(notes) && notes[i] != nil {
			n := notes[i]
			if err = tx.QueryRow(ctx, `
				INSERT INTO messages (id, chat_id, sender_id, receiver_id, book_id, text, type)
				VALUES ($1,$2,$3,$4,$5,$6,$7)
				RETURNING created_at`,
				n.ID, n.ChatID, n.SenderID, n.ReceiverID, n.BookID, n.Text, n.Type,
			).Scan(&n.CreatedAt); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.list(ctx, `o.user_id = $1`, userID)
}

func (r *repo) ListSalesByUser(ctx context.Context, sellerID int64) ([]model.Order, error) {
	return r.list(ctx, `EXISTS (
		SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.seller_id = $1
	)`, sellerID)
}

func (r *repo) list(ctx context.Context, where string, userID int64) ([]model.Order, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT o.id, o.user_id, o.purchase_subtotal, o.borrow_deposits,
		       o.shipping, o.tax, o.total,
		       o.payment_method, o.delivery_option, o.status, o.created_at
		FROM orders o
		WHERE `+where+`
		ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.UserID,
			&o.Totals.PurchaseSubtotal, &o.Totals.BorrowDeposits,
			&o.Totals.Shipping, &o.Totals.Tax, &o.Totals.Total,
			&o.PaymentMethod, &o.DeliveryOption, &o.Status, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.items(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *repo) items(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT book_id, seller_id, mode, title, quantity, unit_price, deposit, due_date
		FROM order_items
		WHERE order_id = $1
		ORDER BY book_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.BookID, &it.SellerID, &it.Mode, &it.Title, &it.Quantity, &it.UnitPrice, &it.Deposit, &it.DueDate); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
