package lending

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/clock"
)

const (
	testDuration = 15
	testRate     = 50
)

type testBook struct {
	id    int64
	title string
}

func (b *testBook) LendableID() int64    { return b.id }
func (b *testBook) DisplayTitle() string { return b.title }

type testReader struct {
	id     int64
	number string
}

func (r *testReader) BorrowerID() int64      { return r.id }
func (r *testReader) BorrowerNumber() string { return r.number }

var testToday = time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

func newFixtures() (*clock.Fixed, *testBook, *testReader) {
	return clock.NewFixed(testToday),
		&testBook{id: 1, title: "Test Book"},
		&testReader{id: 2, number: "2024/1"}
}

func daysAgo(n int) time.Time {
	return testToday.AddDate(0, 0, -n)
}

func ptr(t time.Time) *time.Time { return &t }

func TestNew_ValidLending(t *testing.T) {
	c, book, reader := newFixtures()

	l, err := New(c, book, reader, 1, testDuration, testRate)

	require.NoError(t, err)
	assert.Equal(t, book, l.Book())
	assert.Equal(t, reader, l.Reader())
	assert.Equal(t, testToday, l.StartDate())
	assert.Equal(t, testToday.AddDate(0, 0, testDuration), l.LimitDate())
	assert.False(t, l.IsReturned())
	assert.Equal(t, testRate, l.FineValuePerDayInCents())
	assert.Equal(t, int64(0), l.Version())
	assert.Equal(t, testDuration, l.DurationDays())
}

func TestNew_LendingNumberUsesCurrentYear(t *testing.T) {
	c, book, reader := newFixtures()

	l, err := New(c, book, reader, 7, testDuration, testRate)

	require.NoError(t, err)
	assert.Equal(t, "2024/7", l.LendingNumber())
	assert.Equal(t, Number{Year: 2024, Sequence: 7}, l.Number())
}

func TestNew_InvalidArguments(t *testing.T) {
	c, book, reader := newFixtures()
	var nilBook *testBook

	tests := []struct {
		name    string
		book    Book
		reader  Reader
		seq     int
		days    int
		rate    int
		wantErr error
	}{
		{"nil book", nil, reader, 1, testDuration, testRate, ErrBookRequired},
		{"typed nil book", nilBook, reader, 1, testDuration, testRate, ErrBookRequired},
		{"nil reader", book, nil, 1, testDuration, testRate, ErrReaderRequired},
		{"zero sequence", book, reader, 0, testDuration, testRate, ErrInvalidSequence},
		{"zero duration", book, reader, 1, 0, testRate, ErrInvalidDuration},
		{"negative rate", book, reader, 1, testDuration, -1, ErrNegativeFineRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(c, tt.book, tt.reader, tt.seq, tt.days, tt.rate)

			assert.Nil(t, l)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			}
		})
	}
}

func TestLimitDate_IsStartPlusDuration(t *testing.T) {
	c, book, reader := newFixtures()

	for _, days := range []int{1, 7, 15, 30, 365} {
		l, err := Bootstrap(c, book, reader, 2024, 1, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), nil, days, testRate)
		require.NoError(t, err)
		assert.Equal(t, l.StartDate().AddDate(0, 0, days), l.LimitDate(), "duration %d", days)
	}
}

func TestLongSpans_KeepDerivedDaysConsistent(t *testing.T) {
	c, book, reader := newFixtures()

	l, err := New(c, book, reader, 1, 200000, testRate)
	require.NoError(t, err)
	assert.Equal(t, 200000, l.DurationDays())
	days, ok := l.DaysUntilReturn()
	assert.True(t, ok)
	assert.Equal(t, 200000, days)

	start := testToday.AddDate(-300, 0, 0)
	old, err := Bootstrap(c, book, reader, start.Year(), 1, start, nil, testDuration, testRate)
	require.NoError(t, err)
	delayed := clock.DaysBetween(old.LimitDate(), testToday)
	require.Greater(t, delayed, 106751)

	overdue, ok := old.DaysOverdue()
	assert.True(t, ok)
	assert.Equal(t, delayed, overdue)
	assert.Equal(t, delayed, old.DaysDelayed())
	cents, ok := old.FineValueInCents()
	assert.True(t, ok)
	assert.Equal(t, delayed*testRate, cents)
}

func TestReturn_WithCommentary(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)

	err = l.Return(l.Version(), "Great book!")

	require.NoError(t, err)
	returned, ok := l.ReturnedDate()
	require.True(t, ok)
	assert.Equal(t, testToday, returned)
	assert.Equal(t, "Great book!", l.Commentary())
	assert.Equal(t, int64(1), l.Version())
}

func TestReturn_WithoutCommentary(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)

	require.NoError(t, l.Return(0, ""))

	assert.True(t, l.IsReturned())
	assert.Empty(t, l.Commentary())
}

func TestReturn_TwiceFailsWithInvalidArgument(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)
	require.NoError(t, l.Return(l.Version(), ""))

	err = l.Return(l.Version(), "again")

	assert.ErrorIs(t, err, ErrAlreadyReturned)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, int64(1), l.Version())
	assert.Empty(t, l.Commentary())
}

func TestReturn_StaleVersionLeavesLendingUntouched(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)

	err = l.Return(999, "late")

	assert.ErrorIs(t, err, ErrStaleState)
	assert.False(t, l.IsReturned())
	assert.Empty(t, l.Commentary())
	assert.Equal(t, int64(0), l.Version())
}

func TestReturn_StaleVersionOnReturnedLendingReportsStaleState(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := Restore(c, RestoreParams{
		ID: 10, Book: book, Reader: reader, Number: Number{2024, 1},
		StartDate: daysAgo(5), LimitDate: daysAgo(5).AddDate(0, 0, testDuration),
		ReturnedDate: ptr(daysAgo(1)), FineValuePerDayInCents: testRate, Version: 4,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, l.Return(3, ""), ErrStaleState)
	assert.ErrorIs(t, l.Return(4, ""), ErrAlreadyReturned)
}

func TestReturn_ConcurrentCallersOnlyOneWins(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)

	const callers = 32
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Return(0, "")
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrStaleState)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), l.Version())
}

func TestDaysDelayed(t *testing.T) {
	c, book, reader := newFixtures()

	tests := []struct {
		name     string
		start    time.Time
		returned *time.Time
		want     int
	}{
		{"active and not due", daysAgo(5), nil, 0},
		{"active and due today", daysAgo(15), nil, 0},
		{"active and overdue", daysAgo(20), nil, 5},
		{"returned early", daysAgo(20), ptr(daysAgo(10)), 0},
		{"returned on limit date", daysAgo(20), ptr(daysAgo(5)), 0},
		{"returned late", daysAgo(20), ptr(daysAgo(2)), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Bootstrap(c, book, reader, 2024, 1, tt.start, tt.returned, testDuration, testRate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.DaysDelayed())
		})
	}
}

func TestDaysDelayed_GrowsAsTodayAdvances(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := Bootstrap(c, book, reader, 2024, 1, daysAgo(16), nil, testDuration, testRate)
	require.NoError(t, err)

	previous := l.DaysDelayed()
	assert.Equal(t, 1, previous)
	for i := 0; i < 10; i++ {
		c.Advance(1)
		current := l.DaysDelayed()
		assert.Equal(t, previous+1, current)
		previous = current
	}
}

func TestDaysUntilReturn(t *testing.T) {
	c, book, reader := newFixtures()

	active, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)
	days, ok := active.DaysUntilReturn()
	assert.True(t, ok)
	assert.Equal(t, testDuration, days)

	dueToday, err := Bootstrap(c, book, reader, 2024, 2, daysAgo(15), nil, testDuration, testRate)
	require.NoError(t, err)
	days, ok = dueToday.DaysUntilReturn()
	assert.True(t, ok)
	assert.Equal(t, 0, days)

	overdue, err := Bootstrap(c, book, reader, 2024, 3, daysAgo(20), nil, testDuration, testRate)
	require.NoError(t, err)
	_, ok = overdue.DaysUntilReturn()
	assert.False(t, ok)

	returned, err := Bootstrap(c, book, reader, 2024, 4, daysAgo(5), ptr(daysAgo(1)), testDuration, testRate)
	require.NoError(t, err)
	_, ok = returned.DaysUntilReturn()
	assert.False(t, ok)
}

func TestDaysOverdue(t *testing.T) {
	c, book, reader := newFixtures()

	notOverdue, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)
	_, ok := notOverdue.DaysOverdue()
	assert.False(t, ok)

	overdue, err := Bootstrap(c, book, reader, 2024, 2, daysAgo(20), nil, testDuration, testRate)
	require.NoError(t, err)
	days, ok := overdue.DaysOverdue()
	assert.True(t, ok)
	assert.Equal(t, 5, days)

	returnedLate, err := Bootstrap(c, book, reader, 2024, 3, daysAgo(20), ptr(daysAgo(1)), testDuration, testRate)
	require.NoError(t, err)
	_, ok = returnedLate.DaysOverdue()
	assert.False(t, ok)
}

func TestFineValueInCents(t *testing.T) {
	c, book, reader := newFixtures()

	onTime, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)
	_, ok := onTime.FineValueInCents()
	assert.False(t, ok)

	overdue, err := Bootstrap(c, book, reader, 2024, 2, daysAgo(20), nil, testDuration, testRate)
	require.NoError(t, err)
	assert.Equal(t, 5, overdue.DaysDelayed())
	cents, ok := overdue.FineValueInCents()
	assert.True(t, ok)
	assert.Equal(t, 250, cents)
}

func TestTitle_DelegatesToBook(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)

	assert.Equal(t, "Test Book", l.Title())
}

func TestBootstrap_KeepsSuppliedDates(t *testing.T) {
	c, book, reader := newFixtures()
	start := time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)
	returned := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	l, err := Bootstrap(c, book, reader, 2024, 3, start, &returned, testDuration, testRate)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), l.StartDate())
	got, ok := l.ReturnedDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), l.LimitDate())
	assert.Equal(t, "2024/3", l.LendingNumber())
}

func TestRestore_KeepsVersionAndID(t *testing.T) {
	c, book, reader := newFixtures()

	l, err := Restore(c, RestoreParams{
		ID: 42, Book: book, Reader: reader, Number: Number{2023, 9},
		StartDate: daysAgo(3), LimitDate: daysAgo(3).AddDate(0, 0, testDuration),
		Commentary: "imported", FineValuePerDayInCents: 20, Version: 7,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), l.ID())
	assert.Equal(t, int64(7), l.Version())
	assert.Equal(t, "2023/9", l.LendingNumber())
	assert.Equal(t, "imported", l.Commentary())
	require.NoError(t, l.Return(7, ""))
	assert.Equal(t, int64(8), l.Version())
	assert.Equal(t, "imported", l.Commentary())
}

func TestAssignID_OnlyOnce(t *testing.T) {
	c, book, reader := newFixtures()
	l, err := New(c, book, reader, 1, testDuration, testRate)
	require.NoError(t, err)

	l.AssignID(100)
	l.AssignID(200)

	assert.Equal(t, int64(100), l.ID())
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber("2024/15")
	require.NoError(t, err)
	assert.Equal(t, Number{Year: 2024, Sequence: 15}, n)
	assert.Equal(t, "2024/15", n.String())

	for _, bad := range []string{"", "2024", "2024/", "/3", "abc/1", "2024/x", "2024/0", "-1/2", "2024/05", "+2024/5", " 2024/5 ", "2024/5/1"} {
		_, err := ParseNumber(bad)
		assert.ErrorIs(t, err, ErrInvalidNumber, bad)
	}
}
