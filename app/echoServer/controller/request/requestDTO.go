package request

type CreateRequestReq struct {
	Kind   string `json:"kind" validate:"required,oneof=BORROW SWAP"`
	BookID int64  `json:"book_id" validate:"required,gt=0"`

	// Borrow only.
	Duration string  `json:"duration"`
	Deposit  float64 `json:"deposit" validate:"gte=0"`

	// Swap only.
	OfferedBookIDs []int64 `json:"offered_book_ids"`
}

type RespondReq struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPT DECLINE"`
}
