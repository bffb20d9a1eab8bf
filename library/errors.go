package library

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Lookup and catalog errors
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Circulation errors
var (
	ErrLimitExceeded   = errors.New("borrowing limit reached")
	ErrOutstandingFine = errors.New("outstanding fine")
	ErrNoOpenLoan      = errors.New("no open loan for this member and book")
	ErrUnavailable     = errors.New("no copies available")
	ErrAlreadyReserved = errors.New("already reserved")
	ErrAvailableNow    = errors.New("book is available, borrow it directly")
)

// Account errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password too weak")
)

// ErrNoDatabase is returned by Save when the session started without a
// usable database.
var ErrNoDatabase = errors.New("library database unavailable")

// OutstandingFineError blocks a new loan while an open loan is overdue.
type OutstandingFineError struct {
	Amount    decimal.Decimal
	BookTitle string
}

func (e *OutstandingFineError) Error() string {
	return fmt.Sprintf("outstanding fine of %s for '%s'", e.Amount.StringFixed(2), e.BookTitle)
}

// Is lets errors.Is(err, ErrOutstandingFine) match.
func (e *OutstandingFineError) Is(target error) bool { return target == ErrOutstandingFine }
