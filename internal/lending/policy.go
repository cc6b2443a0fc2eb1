package lending

// DefaultMaxOutstanding is how many unreturned lendings a reader may hold.
const DefaultMaxOutstanding = 3

// Policy decides whether a reader may borrow another book. It is evaluated by
// the caller against the reader's outstanding lendings right before a new
// Lending is created.
type Policy struct {
	MaxOutstanding int
}

// DefaultPolicy returns the standard borrowing policy.
func DefaultPolicy() Policy {
	return Policy{MaxOutstanding: DefaultMaxOutstanding}
}

// CheckCanBorrow returns ErrReaderHasOverdue when any outstanding lending is
// overdue and ErrOutstandingLimit when the reader already holds the maximum.
// Returned lendings in the slice are ignored.
func (p Policy) CheckCanBorrow(outstanding []*Lending) error {
	limit := p.MaxOutstanding
	if limit <= 0 {
		limit = DefaultMaxOutstanding
	}

	active := 0
	for _, l := range outstanding {
		if l == nil || l.IsReturned() {
			continue
		}
		if _, overdue := l.DaysOverdue(); overdue {
			return ErrReaderHasOverdue
		}
		active++
	}

	if active >= limit {
		return ErrOutstandingLimit
	}
	return nil
}
