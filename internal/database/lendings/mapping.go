package lendings

import (
	"time"

	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/lending"
)

func toRecord(l *lending.Lending) entities.LendingRecord {
	number := l.Number()
	rec := entities.LendingRecord{
		ID:                     l.ID(),
		LendingNumber:          number.String(),
		Year:                   number.Year,
		Sequence:               number.Sequence,
		BookID:                 l.Book().LendableID(),
		ReaderID:               l.Reader().BorrowerID(),
		StartDate:              l.StartDate(),
		LimitDate:              l.LimitDate(),
		Commentary:             l.Commentary(),
		FineValuePerDayInCents: l.FineValuePerDayInCents(),
		Version:                l.Version(),
	}
	if returned, ok := l.ReturnedDate(); ok {
		rec.ReturnedDate = &returned
	}
	return rec
}

func fromRecord(c clock.Clock, rec *entities.LendingRecord) (*lending.Lending, error) {
	var returned *time.Time
	if rec.ReturnedDate != nil {
		d := clock.Date(*rec.ReturnedDate)
		returned = &d
	}
	return lending.Restore(c, lending.RestoreParams{
		ID:                     rec.ID,
		Book:                   &rec.Book,
		Reader:                 &rec.Reader,
		Number:                 lending.Number{Year: rec.Year, Sequence: rec.Sequence},
		StartDate:              rec.StartDate,
		LimitDate:              rec.LimitDate,
		ReturnedDate:           returned,
		Commentary:             rec.Commentary,
		FineValuePerDayInCents: rec.FineValuePerDayInCents,
		Version:                rec.Version,
	})
}

func fromRecords(c clock.Clock, recs []entities.LendingRecord) ([]*lending.Lending, error) {
	out := make([]*lending.Lending, 0, len(recs))
	for i := range recs {
		l, err := fromRecord(c, &recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
