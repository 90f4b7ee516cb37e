// model/message.go
package model

import "time"

type MessageType string

const (
	MsgText          MessageType = "text"
	MsgBorrowRequest MessageType = "borrow_request"
	MsgSwapOffer     MessageType = "swap_offer"
	MsgRequestUpdate MessageType = "request_update"
)

// Message is one chat row. ChatID is a deterministic key derived from the
// two participant ids and the book id (see repository/message.ChatKey) so
// both parties resolve the same chat.
type Message struct {
	ID         string      `json:"id"`
	ChatID     string      `json:"chat_id"`
	SenderID   int64       `json:"sender_id"`
	ReceiverID int64       `json:"receiver_id"`
	BookID     int64       `json:"book_id"`
	Text       string      `json:"text"`
	Type       MessageType `json:"type"`
	CreatedAt  time.Time   `json:"created_at"`
}
