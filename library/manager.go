package library

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// LibrarianCredentials are supplied by configuration at process start.
type LibrarianCredentials struct {
	Name     string
	Age      int
	Email    string
	Password string
}

// LibraryManager is a thin façade over the in-memory lending core and its
// SQLite snapshot, keeping CLI code simple. State is loaded when the manager
// opens and saved when it closes.
type LibraryManager struct {
	db        *Database
	catalog   *Catalog
	lending   *LendingService
	librarian Librarian
	log       *slog.Logger
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath and
// loads the saved library. A database or snapshot that cannot be read is
// logged and the session starts empty; without a database Save reports
// ErrNoDatabase.
func NewLibraryManager(dbPath string, librarian LibrarianCredentials, log *slog.Logger, opts ...Option) (*LibraryManager, error) {
	if log == nil {
		log = slog.Default()
	}
	hash, err := HashPassword(librarian.Password)
	if err != nil {
		return nil, fmt.Errorf("hash librarian password: %w", err)
	}
	db, err := NewDatabase(dbPath)
	if err != nil {
		log.Warn("could not open library database, starting empty", "path", dbPath, "err", err)
	}

	catalog := NewCatalog()
	lm := &LibraryManager{
		db:        db,
		catalog:   catalog,
		lending:   NewLendingService(catalog, append([]Option{WithLogger(log)}, opts...)...),
		librarian: Librarian{Identity: Identity{Name: librarian.Name, Age: librarian.Age, Email: librarian.Email, PasswordHash: hash}},
		log:       log,
	}
	lm.load()
	return lm, nil
}

func (lm *LibraryManager) load() {
	if lm.db == nil {
		return
	}
	snap, err := lm.db.LoadSnapshot()
	if err != nil {
		lm.log.Warn("could not restore library, starting empty", "err", err)
		return
	}
	lm.catalog.restore(snap.Books, snap.Members)
	lm.lending.Restore(snap.Ledger)
	lm.log.Info("library restored", "books", len(snap.Books), "members", len(snap.Members), "ledger", len(snap.Ledger))
}

// Save writes the current state as one atomic snapshot.
func (lm *LibraryManager) Save() error {
	snap := Snapshot{
		Books:   lm.catalog.Books(),
		Members: lm.catalog.Members(),
		Ledger:  lm.lending.Entries(),
	}
	if lm.db == nil {
		return fmt.Errorf("save library: %w", ErrNoDatabase)
	}
	if err := lm.db.SaveSnapshot(snap); err != nil {
		lm.log.Error("saving library failed", "err", err)
		return fmt.Errorf("save library: %w", err)
	}
	lm.log.Info("library saved", "books", len(snap.Books), "members", len(snap.Members), "ledger", len(snap.Ledger))
	return nil
}

// Close saves the library and closes the underlying database. The database
// is closed even when saving fails.
func (lm *LibraryManager) Close() error {
	saveErr := lm.Save()
	if lm.db == nil {
		return saveErr
	}
	return errors.Join(saveErr, lm.db.Close())
}

// ------------------ Accounts ------------------

// SignIn checks the configured librarian first, then members by exact email.
func (lm *LibraryManager) SignIn(email, password string) (*Principal, error) {
	email = strings.TrimSpace(email)
	if strings.EqualFold(email, lm.librarian.Email) {
		if VerifyPassword(password, lm.librarian.PasswordHash) {
			return &Principal{Identity: lm.librarian.Identity, Role: RoleLibrarian}, nil
		}
		return nil, ErrInvalidCredentials
	}
	m, ok := lm.catalog.Member(email)
	if !ok || !VerifyPassword(password, m.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &Principal{Identity: m.Identity, Role: RoleMember}, nil
}

// RegisterMember validates the credentials and adds a new member.
func (lm *LibraryManager) RegisterMember(name string, age int, email, password string) (*Member, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	if strings.EqualFold(email, lm.librarian.Email) {
		return nil, fmt.Errorf("email %s belongs to the librarian: %w", email, ErrConflict)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	m := NewMember(name, age, email, hash)
	if err := lm.catalog.AddMember(m); err != nil {
		return nil, err
	}
	lm.log.Info("member registered", "email", email)
	return m, nil
}

// ChangePassword replaces a member's password after validating it.
func (lm *LibraryManager) ChangePassword(email, newPassword string) error {
	m, ok := lm.catalog.Member(email)
	if !ok {
		return fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	if err := ValidateCredentials(email, newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	m.PasswordHash = hash
	return nil
}

// RemoveMember refuses members that still hold a book.
func (lm *LibraryManager) RemoveMember(email string) error { return lm.lending.RemoveMember(email) }

// ------------------ Catalog ------------------

func (lm *LibraryManager) AddBook(b *Book) error  { return lm.catalog.AddBook(b) }
func (lm *LibraryManager) RemoveBook(isbn string) { lm.catalog.RemoveBook(isbn) }
func (lm *LibraryManager) Books() []*Book         { return lm.catalog.Books() }
func (lm *LibraryManager) Members() []*Member     { return lm.catalog.Members() }

func (lm *LibraryManager) Book(isbn string) (*Book, bool)      { return lm.catalog.Book(isbn) }
func (lm *LibraryManager) Member(email string) (*Member, bool) { return lm.catalog.Member(email) }

func (lm *LibraryManager) FindBooks(query string) []*Book  { return lm.catalog.FindBooks(query) }
func (lm *LibraryManager) FindMember(query string) *Member { return lm.catalog.FindMember(query) }

// ------------------ Circulation ------------------

func (lm *LibraryManager) Borrow(email, query string, reserveIfUnavailable bool) (*Receipt, error) {
	return lm.lending.Borrow(email, query, reserveIfUnavailable)
}

func (lm *LibraryManager) Return(email, query string) (*Receipt, error) {
	return lm.lending.Return(email, query)
}

func (lm *LibraryManager) Reserve(email, query string) (*Receipt, error) {
	return lm.lending.Reserve(email, query)
}

// CancelReservation drops the member from the queue of the first book
// matching query.
func (lm *LibraryManager) CancelReservation(email, query string) (*Book, error) {
	b, err := lm.lending.resolve(query)
	if err != nil {
		return nil, err
	}
	return b, lm.catalog.CancelReservation(b.ISBN, email)
}

// QueuePosition returns the member's 1-based place in the book's queue, or 0.
func (lm *LibraryManager) QueuePosition(isbn, email string) int {
	return lm.catalog.Position(isbn, email)
}

func (lm *LibraryManager) ClearDues(email string) ([]Payment, error) {
	return lm.lending.ClearDues(email)
}

func (lm *LibraryManager) PendingDues(email string) ([]Due, error) {
	return lm.lending.PendingDues(email)
}

func (lm *LibraryManager) Entries() []*LedgerEntry { return lm.lending.Entries() }

func (lm *LibraryManager) Recommend(req RecommendRequest) []string {
	return lm.lending.Recommend(req)
}

// ------------------ Member views ------------------

// BorrowedBooks resolves the member's borrowed ISBNs to books.
func (lm *LibraryManager) BorrowedBooks(email string) ([]*Book, error) {
	m, ok := lm.catalog.Member(email)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	return lm.resolveAll(m.Borrowed), nil
}

// Reservations resolves the books the member is queued for.
func (lm *LibraryManager) Reservations(email string) ([]*Book, error) {
	m, ok := lm.catalog.Member(email)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	return lm.resolveAll(m.Reserved), nil
}

// Notifications returns and clears the member's pending messages.
func (lm *LibraryManager) Notifications(email string) ([]string, error) {
	m, ok := lm.catalog.Member(email)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	return m.DrainNotifications(), nil
}

// PendingNotifications counts messages without clearing them.
func (lm *LibraryManager) PendingNotifications(email string) int {
	if m, ok := lm.catalog.Member(email); ok {
		return len(m.Notifications)
	}
	return 0
}

func (lm *LibraryManager) resolveAll(isbns []string) []*Book {
	books := make([]*Book, 0, len(isbns))
	for _, isbn := range isbns {
		if b, ok := lm.catalog.Book(isbn); ok {
			books = append(books, b)
		}
	}
	return books
}
