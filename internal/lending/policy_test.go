package lending

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_CheckCanBorrow(t *testing.T) {
	c, book, reader := newFixtures()

	mk := func(seq, startedDaysAgo int) *Lending {
		l, err := Bootstrap(c, book, reader, 2024, seq, daysAgo(startedDaysAgo), nil, testDuration, testRate)
		require.NoError(t, err)
		return l
	}
	returned, err := Bootstrap(c, book, reader, 2024, 99, daysAgo(40), ptr(daysAgo(1)), testDuration, testRate)
	require.NoError(t, err)

	tests := []struct {
		name        string
		outstanding []*Lending
		wantErr     error
	}{
		{"no lendings", nil, nil},
		{"two current lendings", []*Lending{mk(1, 5), mk(2, 3)}, nil},
		{"one overdue lending", []*Lending{mk(1, 30)}, ErrReaderHasOverdue},
		{"three current lendings", []*Lending{mk(1, 5), mk(2, 3), mk(3, 1)}, ErrOutstandingLimit},
		{"returned lendings are ignored", []*Lending{mk(1, 5), mk(2, 3), returned}, nil},
	}

	policy := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CheckCanBorrow(tt.outstanding)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestPolicy_CustomLimit(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)

	assert.ErrorIs(t, Policy{MaxOutstanding: 1}.CheckCanBorrow([]*Lending{l}), ErrOutstandingLimit)
	assert.NoError(t, Policy{MaxOutstanding: 2}.CheckCanBorrow([]*Lending{l}))
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion(3, 3))
	assert.ErrorIs(t, CheckVersion(3, 2), ErrStaleState)
}
