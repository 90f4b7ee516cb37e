package book

type CreateListingReq struct {
	Title    string  `json:"title" validate:"required"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
	CoverURL string  `json:"cover_url"`
	Price    float64 `json:"price" validate:"gte=0"`
	Deposit  float64 `json:"deposit" validate:"gte=0"`

	ForSale   bool `json:"for_sale"`
	ForBorrow bool `json:"for_borrow"`
	ForSwap   bool `json:"for_swap"`
}

type SetActiveReq struct {
	Active bool `json:"active"`
}
