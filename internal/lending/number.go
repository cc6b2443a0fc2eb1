package lending

import (
	"fmt"
	"strconv"
	"strings"
)

// Number is the business key of a lending, rendered as "{year}/{sequence}".
type Number struct {
	Year     int
	Sequence int
}

func (n Number) String() string {
	return fmt.Sprintf("%d/%d", n.Year, n.Sequence)
}

// ParseNumber parses a "{year}/{sequence}" lending number. Only the canonical
// form is accepted: no padding, signs or surrounding space, since the stored
// key is matched verbatim.
func ParseNumber(s string) (Number, error) {
	yearStr, seqStr, ok := strings.Cut(s, "/")
	if !ok {
		return Number{}, ErrInvalidNumber
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year <= 0 {
		return Number{}, ErrInvalidNumber
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil || seq <= 0 {
		return Number{}, ErrInvalidNumber
	}
	n := Number{Year: year, Sequence: seq}
	if n.String() != s {
		return Number{}, ErrInvalidNumber
	}
	return n, nil
}
