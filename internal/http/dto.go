package http

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/librarian/internal/lending"
	"github.com/mrlokans/librarian/internal/services"
)

const maxCommentaryLength = 1000

type CreateLendingBody struct {
	ISBN         string `json:"isbn"`
	ReaderNumber string `json:"reader_number"`
}

func (b CreateLendingBody) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ISBN, validation.Required, validation.Length(10, 17)),
		validation.Field(&b.ReaderNumber, validation.Required),
	)
}

// ReturnLendingBody closes a lending. ExpectedVersion may instead come from
// the If-Match header.
type ReturnLendingBody struct {
	ExpectedVersion *int64 `json:"expected_version"`
	Commentary      string `json:"commentary"`
}

func (b ReturnLendingBody) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ExpectedVersion, validation.NotNil, validation.Min(int64(0))),
		validation.Field(&b.Commentary, validation.Length(0, maxCommentaryLength)),
	)
}

type LendingResponse struct {
	ID              int64            `json:"id"`
	LendingNumber   string           `json:"lending_number"`
	Version         int64            `json:"version"`
	BookID          int64            `json:"book_id"`
	Title           string           `json:"title"`
	ReaderNumber    string           `json:"reader_number"`
	StartDate       string           `json:"start_date"`
	LimitDate       string           `json:"limit_date"`
	ReturnedDate    *string          `json:"returned_date,omitempty"`
	Returned        bool             `json:"returned"`
	Commentary      string           `json:"commentary,omitempty"`
	DurationDays    int              `json:"duration_days"`
	DaysUntilReturn *int             `json:"days_until_return,omitempty"`
	DaysOverdue     *int             `json:"days_overdue,omitempty"`
	FinePerDay      decimal.Decimal  `json:"fine_per_day"`
	FineProjection  *decimal.Decimal `json:"fine_projection,omitempty"`
}

func newLendingResponse(l *lending.Lending) LendingResponse {
	resp := LendingResponse{
		ID:            l.ID(),
		LendingNumber: l.LendingNumber(),
		Version:       l.Version(),
		BookID:        l.Book().LendableID(),
		Title:         l.Title(),
		ReaderNumber:  l.Reader().BorrowerNumber(),
		StartDate:     l.StartDate().Format(time.DateOnly),
		LimitDate:     l.LimitDate().Format(time.DateOnly),
		Returned:      l.IsReturned(),
		Commentary:    l.Commentary(),
		DurationDays:  l.DurationDays(),
		FinePerDay:    services.CentsToAmount(int64(l.FineValuePerDayInCents())),
	}
	if d, ok := l.ReturnedDate(); ok {
		s := d.Format(time.DateOnly)
		resp.ReturnedDate = &s
	}
	if days, ok := l.DaysUntilReturn(); ok {
		resp.DaysUntilReturn = &days
	}
	if days, ok := l.DaysOverdue(); ok {
		resp.DaysOverdue = &days
	}
	if cents, ok := l.FineValueInCents(); ok {
		amount := services.CentsToAmount(int64(cents))
		resp.FineProjection = &amount
	}
	return resp
}

func newLendingResponses(ls []*lending.Lending) []LendingResponse {
	out := make([]LendingResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, newLendingResponse(l))
	}
	return out
}

type FineResponse struct {
	ID            int64           `json:"id"`
	LendingNumber string          `json:"lending_number"`
	PerDay        decimal.Decimal `json:"per_day"`
	Amount        decimal.Decimal `json:"amount"`
	AmountInCents int             `json:"amount_in_cents"`
}

func newFineResponse(f *lending.Fine) FineResponse {
	return FineResponse{
		ID:            f.ID(),
		LendingNumber: f.Lending().LendingNumber(),
		PerDay:        services.CentsToAmount(int64(f.FineValuePerDayInCents())),
		Amount:        services.CentsToAmount(int64(f.CentsValue())),
		AmountInCents: f.CentsValue(),
	}
}

type ReturnResponse struct {
	Lending LendingResponse `json:"lending"`
	Fine    *FineResponse   `json:"fine,omitempty"`
}

type AverageDurationResponse struct {
	ISBN                string          `json:"isbn,omitempty"`
	AverageDurationDays decimal.Decimal `json:"average_duration_days"`
}
