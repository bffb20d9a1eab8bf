package library

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewLedgerEntry(t *testing.T) {
	borrowed := time.Date(2024, time.March, 1, 17, 45, 0, 0, time.UTC)
	e := NewLedgerEntry("maya@lib.org", "D1", borrowed)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, date(2024, time.March, 1), e.BorrowDate)
	assert.Equal(t, date(2024, time.March, 15), e.DueDate)
	assert.True(t, e.IsOpen())

	other := NewLedgerEntry("maya@lib.org", "D1", borrowed)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestCalculateFine(t *testing.T) {
	tests := []struct {
		name     string
		returned *time.Time
		asOf     time.Time
		want     string
	}{
		{name: "before due", asOf: date(2024, time.March, 10), want: "0"},
		{name: "on due date", asOf: date(2024, time.March, 15), want: "0"},
		{name: "one day late", asOf: date(2024, time.March, 16), want: "0.5"},
		{name: "open six days late", asOf: date(2024, time.March, 21), want: "3"},
		{
			name:     "returned late stops accruing",
			returned: ptr(date(2024, time.March, 21)),
			asOf:     date(2024, time.April, 30),
			want:     "3",
		},
		{
			name:     "returned on time",
			returned: ptr(date(2024, time.March, 14)),
			asOf:     date(2024, time.April, 30),
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewLedgerEntry("maya@lib.org", "D1", date(2024, time.March, 1))
			e.ReturnDate = tt.returned
			got := e.CalculateFine(tt.asOf)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestCalculateFine_OpenLoanIsMonotonic(t *testing.T) {
	e := NewLedgerEntry("maya@lib.org", "D1", date(2024, time.March, 1))

	prev := decimal.Zero
	for day := date(2024, time.March, 1); day.Before(date(2024, time.May, 1)); day = day.AddDate(0, 0, 1) {
		fine := e.CalculateFine(day)
		require.True(t, fine.GreaterThanOrEqual(prev), "fine dropped on %s", day.Format(time.DateOnly))
		require.False(t, fine.IsNegative())
		prev = fine
	}
}

func TestClose(t *testing.T) {
	e := NewLedgerEntry("maya@lib.org", "D1", date(2024, time.March, 1))

	require.True(t, e.Close(time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, date(2024, time.March, 20), *e.ReturnDate)

	assert.False(t, e.Close(date(2024, time.March, 25)))
	assert.Equal(t, date(2024, time.March, 20), *e.ReturnDate)
}

func TestDay_UsesLocalCalendarDate(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2024, time.March, 1, 23, 30, 0, 0, est)

	assert.Equal(t, date(2024, time.March, 1), Day(late))
}

func ptr[T any](v T) *T { return &v }
