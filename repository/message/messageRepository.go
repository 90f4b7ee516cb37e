package messagerepo

import (
	"context"
	"fmt"

	"campusmarket/model"
	"campusmarket/util/database"

	"github.com/oklog/ulid/v2"
)

// ChatKey derives the chat id for two participants and a book. The user ids
// are ordered low-to-high so both sides resolve the same chat regardless of
// who sends first.
func ChatKey(userA, userB, bookID int64) string {
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("chat_%d_%d_%d", lo, hi, bookID)
}

type Repo interface {
	Send(ctx context.Context, m *model.Message) error
	ListChat(ctx context.Context, chatID string) ([]model.Message, error)
}

type repo struct {
	db *database.DB
}

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Send(ctx context.Context, m *model.Message) error {
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	if m.ChatID == "" {
		m.ChatID = ChatKey(m.SenderID, m.ReceiverID, m.BookID)
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, receiver_id, book_id, text, type)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		m.ID, m.ChatID, m.SenderID, m.ReceiverID, m.BookID, m.Text, m.Type,
	).Scan(&m.CreatedAt)
}

func (r *repo) ListChat(ctx context.Context, chatID string) ([]model.Message, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, chat_id, sender_id, receiver_id, book_id, text, type, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.ReceiverID, &m.BookID, &m.Text, &m.Type, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
