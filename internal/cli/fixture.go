package cli

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var readerNumberPattern = regexp.MustCompile(`^[0-9]{4}/[0-9]+$`)

// Fixture is the JSON document consumed by the bootstrap command.
type Fixture struct {
	Books    []FixtureBook    `json:"books"`
	Readers  []FixtureReader  `json:"readers"`
	Lendings []FixtureLending `json:"lendings"`
}

type FixtureBook struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Description string `json:"description,omitempty"`
}

type FixtureReader struct {
	ReaderNumber string `json:"reader_number"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

// FixtureLending is a historical lending. Year defaults to the start date's
// year; zero duration and rate fall back to the command's defaults.
type FixtureLending struct {
	ISBN                   string `json:"isbn"`
	ReaderNumber           string `json:"reader_number"`
	Year                   int    `json:"year,omitempty"`
	Sequence               int    `json:"sequence"`
	StartDate              string `json:"start_date"`
	ReturnedDate           string `json:"returned_date,omitempty"`
	DurationDays           int    `json:"duration_days,omitempty"`
	FineValuePerDayInCents *int   `json:"fine_value_per_day_in_cents,omitempty"`
}

func (f Fixture) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Books),
		validation.Field(&f.Readers),
		validation.Field(&f.Lendings),
	)
}

func (b FixtureBook) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ISBN, validation.Required, validation.Length(10, 17)),
		validation.Field(&b.Title, validation.Required, validation.Length(1, 512)),
	)
}

func (r FixtureReader) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReaderNumber, validation.Required, validation.Match(readerNumberPattern)),
		validation.Field(&r.Name, validation.Required),
	)
}

func (l FixtureLending) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ISBN, validation.Required),
		validation.Field(&l.ReaderNumber, validation.Required, validation.Match(readerNumberPattern)),
		validation.Field(&l.Year, validation.Min(0)),
		validation.Field(&l.Sequence, validation.Required, validation.Min(1)),
		validation.Field(&l.StartDate, validation.Required, validation.Date(time.DateOnly)),
		validation.Field(&l.ReturnedDate, validation.Date(time.DateOnly), validation.By(l.notBeforeStart)),
		validation.Field(&l.DurationDays, validation.Min(0)),
		validation.Field(&l.FineValuePerDayInCents, validation.Min(0)),
	)
}

func (l FixtureLending) notBeforeStart(value any) error {
	returned, _ := value.(string)
	if returned == "" {
		return nil
	}
	start, err1 := time.Parse(time.DateOnly, l.StartDate)
	end, err2 := time.Parse(time.DateOnly, returned)
	if err1 != nil || err2 != nil {
		return nil
	}
	if end.Before(start) {
		return validation.NewError("validation_returned_before_start", "must not be before the start date")
	}
	return nil
}
