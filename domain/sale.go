package domain

// Location is a geographic point captured when a sale is recorded.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// SaleItem is one purchased line within a sale. Quantity and price are
// whole currency units.
type SaleItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

// Sale is one completed transaction with a market. DebtDueDate is set
// if and only if DebtAmount is positive; settling the debt clears both.
type Sale struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	MarketName  string     `json:"marketName"`
	Items       []SaleItem `json:"items"`
	TotalAmount int64      `json:"totalAmount"`
	PaidAmount  int64      `json:"paidAmount"`
	DebtAmount  int64      `json:"debtAmount"`
	DebtDueDate string     `json:"debtDueDate,omitempty"`
	Location    *Location  `json:"location,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
}
