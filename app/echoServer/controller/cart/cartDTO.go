package cart

type AddItemReq struct {
	BookID int64  `json:"book_id" validate:"required,gt=0"`
	Mode   string `json:"mode" validate:"required,oneof=PURCHASE BORROW SWAP"`

	// Borrow only.
	Duration string   `json:"duration"`
	Deposit  *float64 `json:"deposit"`

	// Swap only.
	OfferedBookIDs []int64 `json:"offered_book_ids"`
}

type UpdateQuantityReq struct {
	Quantity int `json:"quantity"`
}

type UpdateBorrowReq struct {
	Duration string   `json:"duration" validate:"required"`
	Deposit  *float64 `json:"deposit"`
}
