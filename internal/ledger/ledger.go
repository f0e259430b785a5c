package ledger

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"salebook/m/domain"
)

// Validation failures reported by NewSale.
var (
	ErrMarketNameRequired = errors.New("market name is required")
	ErrNoItems            = errors.New("at least one named item is required")
	ErrNegativeAmount     = errors.New("quantity, price and paid amount must not be negative")
	ErrInvalidDueDate     = errors.New("debt due date must be in YYYY-MM-DD format")
)

// ItemDraft is one editable line of the sale form.
type ItemDraft struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

// Draft is the user-entered input for a new sale. A nil PaidAmount
// means the sale was fully paid.
type Draft struct {
	MarketName  string           `json:"marketName"`
	Items       []ItemDraft      `json:"items"`
	PaidAmount  *int64           `json:"paidAmount"`
	DebtDueDate string           `json:"debtDueDate"`
	Location    *domain.Location `json:"location"`
}

// NewSale builds a persistable sale from a draft. Items without a name
// are dropped before totals are computed, the debt is the unpaid part
// of the total, and a due date is kept only while debt remains. The id
// and date are generated here, never supplied by the caller.
func NewSale(draft Draft, now time.Time) (domain.Sale, error) {
	market := strings.TrimSpace(draft.MarketName)
	if market == "" {
		return domain.Sale{}, ErrMarketNameRequired
	}

	var (
		items []domain.SaleItem
		total int64
	)
	for _, it := range draft.Items {
		if it.Quantity < 0 || it.Price < 0 {
			return domain.Sale{}, ErrNegativeAmount
		}
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, domain.SaleItem{
			ID:       id,
			Name:     name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
		total += it.Quantity * it.Price
	}
	if len(items) == 0 {
		return domain.Sale{}, ErrNoItems
	}

	paid := total
	if draft.PaidAmount != nil {
		if *draft.PaidAmount < 0 {
			return domain.Sale{}, ErrNegativeAmount
		}
		paid = *draft.PaidAmount
	}
	debt := total - paid
	if debt < 0 {
		debt = 0
	}

	dueDate := ""
	if debt > 0 {
		dueDate = strings.TrimSpace(draft.DebtDueDate)
		if dueDate == "" {
			dueDate = now.Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", dueDate); err != nil {
			return domain.Sale{}, ErrInvalidDueDate
		}
	}

	return domain.Sale{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Date:        now.Format(time.RFC3339),
		MarketName:  market,
		Items:       items,
		TotalAmount: total,
		PaidAmount:  paid,
		DebtAmount:  debt,
		DebtDueDate: dueDate,
		Location:    draft.Location,
		IsCompleted: true,
	}, nil
}

// SettleDebt marks the matching sale's debt as fully paid and returns
// the resulting snapshot. An unknown id is a no-op, and settling an
// already-settled sale changes nothing, so the operation is idempotent.
// The caller persists the result.
func SettleDebt(snapshot []domain.Sale, saleID string) []domain.Sale {
	updated := make([]domain.Sale, len(snapshot))
	for i, sale := range snapshot {
		if sale.ID == saleID {
			sale.DebtAmount = 0
			sale.PaidAmount = sale.TotalAmount
			sale.DebtDueDate = ""
		}
		updated[i] = sale
	}
	return updated
}

// Search filters the snapshot to sales whose market name or item names
// contain the term, case-insensitively. An empty term matches all.
func Search(snapshot []domain.Sale, term string) []domain.Sale {
	term = strings.ToLower(strings.TrimSpace(term))
	matched := []domain.Sale{}
	if term == "" {
		return append(matched, snapshot...)
	}
	for _, sale := range snapshot {
		if strings.Contains(strings.ToLower(sale.MarketName), term) {
			matched = append(matched, sale)
			continue
		}
		for _, item := range sale.Items {
			if strings.Contains(strings.ToLower(item.Name), term) {
				matched = append(matched, sale)
				break
			}
		}
	}
	return matched
}
