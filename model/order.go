// model/order.go
package model

import "time"

type DeliveryOption string

const (
	DeliveryShip   DeliveryOption = "SHIP"
	DeliveryPickup DeliveryOption = "PICKUP"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "CARD"
	PaymentPickup PaymentMethod = "PAY_ON_PICKUP"
)

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "PLACED"
	OrderCompleted OrderStatus = "COMPLETED"
)

// Totals is the checkout price breakdown. Swap lines never contribute;
// tax applies to the purchase subtotal only.
type Totals struct {
	PurchaseSubtotal float64 `json:"purchase_subtotal"`
	BorrowDeposits   float64 `json:"borrow_deposits"`
	Shipping         float64 `json:"shipping"`
	Tax              float64 `json:"tax"`
	Total            float64 `json:"total"`
}

// OrderItem is a snapshot of one purchase or borrow cart line at checkout
// time. Swap lines become RequestRecords instead.
type OrderItem struct {
	BookID    int64           `json:"book_id"`
	SellerID  int64           `json:"seller_id"`
	Mode      TransactionMode `json:"mode"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice float64         `json:"unit_price,omitempty"`
	Deposit   float64         `json:"deposit,omitempty"`
	DueDate   *time.Time      `json:"due_date,omitempty"`
}

// Order is created atomically at checkout and never mutated by the core
// afterwards.
type Order struct {
	ID             string         `json:"id"`
	UserID         int64          `json:"user_id"`
	Items          []OrderItem    `json:"items"`
	Totals         Totals         `json:"totals"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	DeliveryOption DeliveryOption `json:"delivery_option"`
	Status         OrderStatus    `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}
