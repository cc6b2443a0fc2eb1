package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// maxReportPages bounds a single report run.
const maxReportPages = 1000

// OverdueEntry is one line of the overdue report.
type OverdueEntry struct {
	LendingNumber      string    `json:"lending_number"`
	ReaderNumber       string    `json:"reader_number"`
	Title              string    `json:"title"`
	LimitDate          time.Time `json:"limit_date"`
	DaysOverdue        int       `json:"days_overdue"`
	ProjectedFineCents int       `json:"projected_fine_cents"`
}

// OverdueReport lists every overdue lending with the fine it would incur if
// returned today.
type OverdueReport struct {
	GeneratedOn         time.Time      `json:"generated_on"`
	Entries             []OverdueEntry `json:"entries"`
	TotalProjectedCents int64          `json:"total_projected_cents"`
}

// TotalProjected is the sum of projected fines in currency units.
func (r OverdueReport) TotalProjected() decimal.Decimal {
	return CentsToAmount(r.TotalProjectedCents)
}

// CentsToAmount converts an integer number of cents to a currency amount.
func CentsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// OverdueReport walks every page of overdue lendings.
func (s *LendingService) OverdueReport() (OverdueReport, error) {
	report := OverdueReport{GeneratedOn: s.clock.Today(), Entries: []OverdueEntry{}}

	page := Page{Number: 1, Limit: 100}
	for ; page.Number <= maxReportPages; page.Number++ {
		res, err := s.Overdue(page)
		if err != nil {
			return OverdueReport{}, err
		}
		for _, l := range res.Lendings {
			days, _ := l.DaysOverdue()
			cents, _ := l.FineValueInCents()
			report.Entries = append(report.Entries, OverdueEntry{
				LendingNumber:      l.LendingNumber(),
				ReaderNumber:       l.Reader().BorrowerNumber(),
				Title:              l.Title(),
				LimitDate:          l.LimitDate(),
				DaysOverdue:        days,
				ProjectedFineCents: cents,
			})
			report.TotalProjectedCents += int64(cents)
		}
		if int64(page.offset()+len(res.Lendings)) >= res.Total || len(res.Lendings) == 0 {
			break
		}
	}
	return report, nil
}
