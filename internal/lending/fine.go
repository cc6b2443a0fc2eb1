package lending

// Fine is the penalty taken when an overdue lending is closed. Its amount is
// computed once, at construction, and never follows later changes of the lending.
type Fine struct {
	id                     int64
	lending                *Lending
	fineValuePerDayInCents int
	centsValue             int
}

// NewFine snapshots the fine of an overdue lending.
func NewFine(l *Lending) (*Fine, error) {
	if l == nil {
		return nil, ErrLendingRequired
	}
	rate, delayed := l.fineBasis()
	if delayed <= 0 {
		return nil, ErrNotOverdue
	}
	return &Fine{
		lending:                l,
		fineValuePerDayInCents: rate,
		centsValue:             rate * delayed,
	}, nil
}

// RestoreFine rebuilds a stored fine without recomputing its amount.
func RestoreFine(id int64, l *Lending, fineValuePerDayInCents, centsValue int) (*Fine, error) {
	if l == nil {
		return nil, ErrLendingRequired
	}
	return &Fine{
		id:                     id,
		lending:                l,
		fineValuePerDayInCents: fineValuePerDayInCents,
		centsValue:             centsValue,
	}, nil
}

// AssignID sets the identifier of a fine that has none yet.
func (f *Fine) AssignID(id int64) {
	if f.id == 0 {
		f.id = id
	}
}

func (f *Fine) ID() int64                   { return f.id }
func (f *Fine) Lending() *Lending           { return f.lending }
func (f *Fine) FineValuePerDayInCents() int { return f.fineValuePerDayInCents }
func (f *Fine) CentsValue() int             { return f.centsValue }
