// model/book.go
package model

import "time"

// Listing is a catalog entry owned by one user. A listing can be offered in
// any combination of transaction modes; Price applies to purchase, Deposit
// to borrow.
type Listing struct {
	ID       int64   `json:"id"`
	OwnerID  int64   `json:"owner_id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
	CoverURL string  `json:"cover_url,omitempty"`
	Price    float64 `json:"price"`
	Deposit  float64 `json:"deposit"`

	ForSale   bool `json:"for_sale"`
	ForBorrow bool `json:"for_borrow"`
	ForSwap   bool `json:"for_swap"`
	Active    bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
}
