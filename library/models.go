package library

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role tells the CLI which menu a signed-in principal gets.
type Role int

const (
	RoleMember Role = iota
	RoleLibrarian
)

func (r Role) String() string {
	if r == RoleLibrarian {
		return "librarian"
	}
	return "member"
}

// Identity is the account data shared by members and the librarian.
type Identity struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Don't serialize password hash
}

// Principal is the result of a successful sign-in.
type Principal struct {
	Identity
	Role Role
}

// Librarian is configured at process start and administers the catalog.
type Librarian struct {
	Identity
}

// Book is one catalog title with its copy counts and reservation queue.
// The queue holds member emails in FIFO order.
type Book struct {
	ISBN            string   `json:"isbn"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	Genre           string   `json:"genre"`
	Description     string   `json:"description"`
	TotalCopies     int      `json:"total_copies"`
	AvailableCopies int      `json:"available_copies"`
	Queue           []string `json:"queue"`
}

// NewBook returns a book with all copies on the shelf.
func NewBook(isbn, title, author, genre, description string, copies int) *Book {
	if copies < 1 {
		copies = 1
	}
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Genre:           genre,
		Description:     description,
		TotalCopies:     copies,
		AvailableCopies: copies,
	}
}

// IsAvailable reports whether at least one copy can be lent.
func (b *Book) IsAvailable() bool { return b.AvailableCopies > 0 }

func (b *Book) takeCopy() bool {
	if !b.IsAvailable() {
		return false
	}
	b.AvailableCopies--
	return true
}

func (b *Book) putCopy() {
	if b.AvailableCopies < b.TotalCopies {
		b.AvailableCopies++
	}
}

// Member is a registered borrower. Books are referenced by ISBN and ledger
// entries by ID; both resolve through the Catalog and LendingService.
type Member struct {
	Identity
	Borrowed      []string `json:"borrowed"`
	Loans         []string `json:"loans"`
	Notifications []string `json:"notifications"`
	Reserved      []string `json:"reserved"`
}

// NewMember builds a member from an already hashed password.
func NewMember(name string, age int, email, passwordHash string) *Member {
	return &Member{Identity: Identity{Name: name, Age: age, Email: email, PasswordHash: passwordHash}}
}

// Notify queues a message for the member's next visit.
func (m *Member) Notify(msg string) {
	m.Notifications = append(m.Notifications, msg)
}

// DrainNotifications returns pending messages and clears them.
func (m *Member) DrainNotifications() []string {
	out := m.Notifications
	m.Notifications = nil
	return out
}

// HasBorrowed reports whether the member currently holds a copy of isbn.
func (m *Member) HasBorrowed(isbn string) bool {
	return indexOf(m.Borrowed, isbn) >= 0
}

func (m *Member) removeBorrowed(isbn string) {
	m.Borrowed = removeFirst(m.Borrowed, isbn)
}

func (m *Member) addReserved(isbn string) {
	if indexOf(m.Reserved, isbn) < 0 {
		m.Reserved = append(m.Reserved, isbn)
	}
}

// Snapshot is the complete library state for persistence.
type Snapshot struct {
	Books   []*Book
	Members []*Member
	Ledger  []*LedgerEntry
}

// Receipt describes the outcome of a successful circulation request.
type Receipt struct {
	Book     *Book
	Entry    *LedgerEntry
	Reserved bool
	// Fine is set on returns; it is reported, not collected.
	Fine     decimal.Decimal
	Notified string
}

// Payment is one fine settled by ClearDues.
type Payment struct {
	EntryID   string
	BookTitle string
	Amount    decimal.Decimal
	PaidOn    time.Time
}

// Due is one line of a member's pending dues listing.
type Due struct {
	EntryID   string
	BookTitle string
	DueDate   time.Time
	Fine      decimal.Decimal
	Open      bool
	Paid      bool
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func removeFirst(list []string, v string) []string {
	if i := indexOf(list, v); i >= 0 {
		return append(list[:i], list[i+1:]...)
	}
	return list
}
