package library

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// LendingService runs borrow, return, reserve and dues workflows over a
// Catalog and owns the global ledger.
type LendingService struct {
	catalog *Catalog
	ledger  []*LedgerEntry
	byID    map[string]*LedgerEntry
	now     func() time.Time
	log     *slog.Logger
}

// Option configures a LendingService.
type Option func(*LendingService)

// WithClock replaces time.Now; tests use it to move "today".
func WithClock(now func() time.Time) Option {
	return func(s *LendingService) { s.now = now }
}

// WithLogger sets the logger used for circulation events.
func WithLogger(l *slog.Logger) Option {
	return func(s *LendingService) { s.log = l }
}

// NewLendingService wires a service to catalog with an empty ledger.
func NewLendingService(catalog *Catalog, opts ...Option) *LendingService {
	s := &LendingService{
		catalog: catalog,
		byID:    make(map[string]*LedgerEntry),
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LendingService) Catalog() *Catalog { return s.catalog }

func (s *LendingService) today() time.Time { return Day(s.now()) }

// Entries returns the global ledger in creation order.
func (s *LendingService) Entries() []*LedgerEntry {
	return append([]*LedgerEntry(nil), s.ledger...)
}

// MemberEntries returns the member's own loan history.
func (s *LendingService) MemberEntries(email string) ([]*LedgerEntry, error) {
	m, ok := s.catalog.Member(email)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	out := make([]*LedgerEntry, 0, len(m.Loans))
	for _, id := range m.Loans {
		if e, ok := s.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *LendingService) record(e *LedgerEntry) {
	s.ledger = append(s.ledger, e)
	s.byID[e.ID] = e
}

// resolve picks the first FindBooks hit.
func (s *LendingService) resolve(query string) (*Book, error) {
	books := s.catalog.FindBooks(query)
	if len(books) == 0 {
		return nil, fmt.Errorf("no book found with title or ISBN '%s': %w", query, ErrNotFound)
	}
	return books[0], nil
}

func (s *LendingService) member(email string) (*Member, error) {
	m, ok := s.catalog.Member(email)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	return m, nil
}

// Borrow lends the first book matching query to the member.
//
// The limit check happens before any search. When the book has no copy left
// nothing is lent: with reserveIfUnavailable the member is queued instead,
// otherwise ErrUnavailable lets the caller offer a reservation. An open
// overdue loan blocks new loans with an *OutstandingFineError.
func (s *LendingService) Borrow(email, query string, reserveIfUnavailable bool) (*Receipt, error) {
	m, err := s.member(email)
	if err != nil {
		return nil, err
	}
	if len(m.Borrowed) >= BorrowLimit {
		return nil, fmt.Errorf("you can borrow up to %d books: %w", BorrowLimit, ErrLimitExceeded)
	}

	b, err := s.resolve(query)
	if err != nil {
		return nil, err
	}

	if !b.IsAvailable() {
		if !reserveIfUnavailable {
			return nil, fmt.Errorf("'%s' (%d/%d copies left): %w", b.Title, b.AvailableCopies, b.TotalCopies, ErrUnavailable)
		}
		if err := s.catalog.Reserve(b.ISBN, email); err != nil {
			return nil, err
		}
		s.log.Debug("book reserved", "isbn", b.ISBN, "member", email)
		return &Receipt{Book: b, Reserved: true}, nil
	}

	today := s.today()
	for _, id := range m.Loans {
		e, ok := s.byID[id]
		if !ok || !e.IsOpen() {
			continue
		}
		if fine := e.CalculateFine(today); fine.IsPositive() {
			return nil, &OutstandingFineError{Amount: fine, BookTitle: s.titleOf(e.ISBN)}
		}
	}

	if !b.takeCopy() {
		return nil, fmt.Errorf("'%s': %w", b.Title, ErrUnavailable)
	}
	entry := NewLedgerEntry(email, b.ISBN, today)
	s.record(entry)
	m.Loans = append(m.Loans, entry.ID)
	m.Borrowed = append(m.Borrowed, b.ISBN)

	s.log.Debug("book borrowed", "isbn", b.ISBN, "member", email, "due", entry.DueDate.Format(time.DateOnly))
	return &Receipt{Book: b, Entry: entry}, nil
}

// Return closes the member's own open loan on the first book matching query,
// puts the copy back and notifies the next member in the queue. The fine is
// reported on the receipt, not collected.
func (s *LendingService) Return(email, query string) (*Receipt, error) {
	m, err := s.member(email)
	if err != nil {
		return nil, err
	}
	b, err := s.resolve(query)
	if err != nil {
		return nil, err
	}

	var entry *LedgerEntry
	for _, id := range m.Loans {
		if e, ok := s.byID[id]; ok && e.ISBN == b.ISBN && e.IsOpen() {
			entry = e
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("'%s': %w", b.Title, ErrNoOpenLoan)
	}

	today := s.today()
	entry.Close(today)
	fine := entry.CalculateFine(today)

	b.putCopy()
	m.removeBorrowed(b.ISBN)
	notified, _ := s.catalog.ReleaseNextReservation(b.ISBN)

	s.log.Debug("book returned", "isbn", b.ISBN, "member", email, "fine", fine.StringFixed(2))
	return &Receipt{Book: b, Entry: entry, Fine: fine, Notified: notified}, nil
}

// Reserve queues the member for the first book matching query.
func (s *LendingService) Reserve(email, query string) (*Receipt, error) {
	if _, err := s.member(email); err != nil {
		return nil, err
	}
	b, err := s.resolve(query)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Reserve(b.ISBN, email); err != nil {
		return nil, err
	}
	s.log.Debug("book reserved", "isbn", b.ISBN, "member", email)
	return &Receipt{Book: b, Reserved: true}, nil
}

// ClearDues settles every entry of the member that carries a fine today.
// Paying counts as returning on the payment day: the return date is set, so
// an open loan is closed without its copy going back on the shelf.
func (s *LendingService) ClearDues(email string) ([]Payment, error) {
	entries, err := s.MemberEntries(email)
	if err != nil {
		return nil, err
	}

	today := s.today()
	var paid []Payment
	for _, e := range entries {
		if e.PaidDate != nil {
			continue
		}
		fine := e.CalculateFine(today)
		if !fine.IsPositive() {
			continue
		}
		returned, paidOn := today, today
		e.ReturnDate = &returned
		e.PaidDate = &paidOn
		paid = append(paid, Payment{
			EntryID:   e.ID,
			BookTitle: s.titleOf(e.ISBN),
			Amount:    fine,
			PaidOn:    today,
		})
	}
	if len(paid) > 0 {
		s.log.Debug("dues cleared", "member", email, "entries", len(paid))
	}
	return paid, nil
}

// PendingDues lists every loan of the member with its current fine.
func (s *LendingService) PendingDues(email string) ([]Due, error) {
	entries, err := s.MemberEntries(email)
	if err != nil {
		return nil, err
	}
	today := s.today()
	dues := make([]Due, 0, len(entries))
	for _, e := range entries {
		d := Due{
			EntryID:   e.ID,
			BookTitle: s.titleOf(e.ISBN),
			DueDate:   e.DueDate,
			Fine:      decimal.Zero,
			Open:      e.IsOpen(),
			Paid:      e.PaidDate != nil,
		}
		if !d.Paid {
			d.Fine = e.CalculateFine(today)
		}
		dues = append(dues, d)
	}
	return dues, nil
}

// Restore replaces the ledger. Members keep the Loans they were saved with;
// IDs missing from entries are dropped. Entries are never attached by email,
// so a re-registered address does not inherit an earlier member's history.
func (s *LendingService) Restore(entries []*LedgerEntry) {
	s.ledger = nil
	s.byID = make(map[string]*LedgerEntry, len(entries))
	for _, e := range entries {
		s.record(e)
	}
	for _, m := range s.catalog.Members() {
		loans := m.Loans[:0]
		for _, id := range m.Loans {
			if _, ok := s.byID[id]; ok {
				loans = append(loans, id)
			}
		}
		if len(loans) == 0 {
			loans = nil
		}
		m.Loans = loans
	}
}

// RemoveMember deletes the member unless they still hold an open loan.
// Unknown emails are a no-op.
func (s *LendingService) RemoveMember(email string) error {
	m, ok := s.catalog.Member(email)
	if !ok {
		return nil
	}
	open := 0
	for _, id := range m.Loans {
		if e, ok := s.byID[id]; ok && e.IsOpen() {
			open++
		}
	}
	if open > 0 {
		return fmt.Errorf("member %s has %d open loan(s): %w", email, open, ErrConflict)
	}
	s.catalog.RemoveMember(email)
	s.log.Debug("member removed", "member", email)
	return nil
}

func (s *LendingService) titleOf(isbn string) string {
	if b, ok := s.catalog.Book(isbn); ok {
		return b.Title
	}
	return isbn
}
