package library

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lending policy. These are fixed values, not per-loan settings.
const (
	BorrowLimit = 3
	LoanPeriod  = 14 * 24 * time.Hour
)

// FineRate is charged per overdue day.
var FineRate = decimal.NewFromFloat(0.5)

// LedgerEntry records one loan. ReturnDate is nil while the loan is open.
// PaidDate is set when ClearDues settled the entry's fine.
type LedgerEntry struct {
	ID          string     `json:"id"`
	MemberEmail string     `json:"member_email"`
	ISBN        string     `json:"isbn"`
	BorrowDate  time.Time  `json:"borrow_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	PaidDate    *time.Time `json:"paid_date,omitempty"`
}

// NewLedgerEntry opens a loan on the given day; the due date is always
// LoanPeriod later.
func NewLedgerEntry(memberEmail, isbn string, borrowed time.Time) *LedgerEntry {
	day := Day(borrowed)
	return &LedgerEntry{
		ID:          uuid.NewString(),
		MemberEmail: memberEmail,
		ISBN:        isbn,
		BorrowDate:  day,
		DueDate:     day.Add(LoanPeriod),
	}
}

// IsOpen reports whether the book has not been returned yet.
func (e *LedgerEntry) IsOpen() bool { return e.ReturnDate == nil }

// Close sets the return date. It reports false if the entry was already closed.
func (e *LedgerEntry) Close(on time.Time) bool {
	if !e.IsOpen() {
		return false
	}
	day := Day(on)
	e.ReturnDate = &day
	return true
}

// CalculateFine evaluates the fine from the dates on every call so that an
// open loan keeps accruing day over day.
func (e *LedgerEntry) CalculateFine(asOf time.Time) decimal.Decimal {
	end := Day(asOf)
	if e.ReturnDate != nil {
		end = *e.ReturnDate
	}
	days := daysBetween(e.DueDate, end)
	if days <= 0 {
		return decimal.Zero
	}
	return FineRate.Mul(decimal.NewFromInt(int64(days)))
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}
