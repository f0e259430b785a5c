package stats

import (
	"sort"
	"time"

	"salebook/m/domain"
)

const dayFormat = "2006-01-02"

// DayTotal is one bucket of the seven-day sales series.
type DayTotal struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Total   int64  `json:"total"`
}

// Summary is the dashboard projection of a ledger snapshot.
type Summary struct {
	TodayTotal           int64         `json:"todayTotal"`
	TotalOutstandingDebt int64         `json:"totalOutstandingDebt"`
	DueOrOverdueDebts    []domain.Sale `json:"dueOrOverdueDebts"`
	SevenDaySeries       []DayTotal    `json:"sevenDaySeries"`
}

// Summarize computes the dashboard views for a snapshot at the given
// instant. Day boundaries are the local calendar days of now's
// location. Sales whose date does not parse are left out of the
// date-bucketed numbers but still count toward the outstanding debt
// total.
func Summarize(snapshot []domain.Sale, now time.Time) Summary {
	loc := now.Location()
	today := now.Format(dayFormat)

	sum := Summary{DueOrOverdueDebts: []domain.Sale{}}

	dayTotals := make(map[string]int64, 7)
	for _, sale := range snapshot {
		sum.TotalOutstandingDebt += sale.DebtAmount

		if t, err := time.Parse(time.RFC3339, sale.Date); err == nil {
			day := t.In(loc).Format(dayFormat)
			dayTotals[day] += sale.TotalAmount
			if day == today {
				sum.TodayTotal += sale.TotalAmount
			}
		}

		if sale.DebtAmount > 0 && sale.DebtDueDate != "" {
			if _, err := time.Parse(dayFormat, sale.DebtDueDate); err == nil && sale.DebtDueDate <= today {
				sum.DueOrOverdueDebts = append(sum.DueOrOverdueDebts, sale)
			}
		}
	}

	sort.SliceStable(sum.DueOrOverdueDebts, func(i, j int) bool {
		return sum.DueOrOverdueDebts[i].DebtDueDate < sum.DueOrOverdueDebts[j].DebtDueDate
	})

	sum.SevenDaySeries = make([]DayTotal, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		key := d.Format(dayFormat)
		sum.SevenDaySeries = append(sum.SevenDaySeries, DayTotal{
			Date:    key,
			Weekday: d.Format("Mon"),
			Total:   dayTotals[key],
		})
	}

	return sum
}
