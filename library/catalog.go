package library

import (
	"fmt"
	"strings"
)

// Catalog owns books and members, keyed by ISBN and email and kept in
// insertion order. Everything else refers to them by key.
type Catalog struct {
	books       map[string]*Book
	bookOrder   []string
	members     map[string]*Member
	memberOrder []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		books:   make(map[string]*Book),
		members: make(map[string]*Member),
	}
}

// ------------------ Books ------------------

// AddBook adds b unless a book with the same ISBN exists.
func (c *Catalog) AddBook(b *Book) error {
	if _, ok := c.books[b.ISBN]; ok {
		return fmt.Errorf("book with ISBN %s: %w", b.ISBN, ErrConflict)
	}
	c.books[b.ISBN] = b
	c.bookOrder = append(c.bookOrder, b.ISBN)
	return nil
}

// RemoveBook is a no-op when the ISBN is unknown.
func (c *Catalog) RemoveBook(isbn string) {
	if _, ok := c.books[isbn]; !ok {
		return
	}
	delete(c.books, isbn)
	c.bookOrder = removeFirst(c.bookOrder, isbn)
}

func (c *Catalog) Book(isbn string) (*Book, bool) {
	b, ok := c.books[isbn]
	return b, ok
}

// Books returns all books in insertion order.
func (c *Catalog) Books() []*Book {
	out := make([]*Book, 0, len(c.bookOrder))
	for _, isbn := range c.bookOrder {
		out = append(out, c.books[isbn])
	}
	return out
}

// FindBooks matches the query as a case-insensitive substring of title,
// author, ISBN or genre. When nothing matches it falls back to fuzzy title
// matching and returns the books carrying the matched titles.
func (c *Catalog) FindBooks(query string) []*Book {
	q := normalize(query)
	all := c.Books()

	var results []*Book
	for _, b := range all {
		if containsAny(q, b.Title, b.Author, b.ISBN, b.Genre) {
			results = append(results, b)
		}
	}
	if len(results) > 0 {
		return results
	}

	titles := make([]string, len(all))
	for i, b := range all {
		titles[i] = b.Title
	}
	seen := make(map[string]bool)
	for _, title := range CloseMatches(q, titles, lookupLimit, LookupCutoff) {
		for _, b := range all {
			if b.Title == title && !seen[b.ISBN] {
				seen[b.ISBN] = true
				results = append(results, b)
			}
		}
	}
	return results
}

// ------------------ Members ------------------

// AddMember registers m unless FindMember already resolves its email. The
// lookup is the same partial/fuzzy search members use, so a near hit also
// blocks registration.
func (c *Catalog) AddMember(m *Member) error {
	if existing := c.FindMember(m.Email); existing != nil {
		return fmt.Errorf("member with email %s (matched %s): %w", m.Email, existing.Email, ErrConflict)
	}
	c.members[m.Email] = m
	c.memberOrder = append(c.memberOrder, m.Email)
	return nil
}

// RemoveMember is a no-op when the email is unknown. Queues and ledger
// entries keep the key and skip it when resolving.
func (c *Catalog) RemoveMember(email string) {
	if _, ok := c.members[email]; !ok {
		return
	}
	delete(c.members, email)
	c.memberOrder = removeFirst(c.memberOrder, email)
}

func (c *Catalog) Member(email string) (*Member, bool) {
	m, ok := c.members[email]
	return m, ok
}

// Members returns all members in registration order.
func (c *Catalog) Members() []*Member {
	out := make([]*Member, 0, len(c.memberOrder))
	for _, email := range c.memberOrder {
		out = append(out, c.members[email])
	}
	return out
}

// FindMember searches name and email like FindBooks does for books, with a
// fuzzy fallback over names, and returns only the first hit.
func (c *Catalog) FindMember(query string) *Member {
	q := normalize(query)
	all := c.Members()

	for _, m := range all {
		if containsAny(q, m.Name, m.Email) {
			return m
		}
	}

	names := make([]string, len(all))
	for i, m := range all {
		names[i] = m.Name
	}
	for _, name := range CloseMatches(q, names, lookupLimit, LookupCutoff) {
		for _, m := range all {
			if m.Name == name {
				return m
			}
		}
	}
	return nil
}

// ------------------ Reservations ------------------

// Reserve appends the member to the book's queue. It refuses duplicates and
// books that still have a copy on the shelf.
func (c *Catalog) Reserve(isbn, email string) error {
	b, ok := c.books[isbn]
	if !ok {
		return fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}
	m, ok := c.members[email]
	if !ok {
		return fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	if indexOf(b.Queue, email) >= 0 {
		return fmt.Errorf("'%s': %w", b.Title, ErrAlreadyReserved)
	}
	if b.IsAvailable() {
		return fmt.Errorf("'%s': %w", b.Title, ErrAvailableNow)
	}

	b.Queue = append(b.Queue, email)
	m.addReserved(isbn)
	m.Notify(fmt.Sprintf("You reserved '%s'. You'll be notified when it's available.", b.Title))
	return nil
}

// ReleaseNextReservation pops the head of the queue and tells that member the
// book can be borrowed. No copy is held for them. Members removed since they
// queued are dropped.
func (c *Catalog) ReleaseNextReservation(isbn string) (string, bool) {
	b, ok := c.books[isbn]
	if !ok {
		return "", false
	}
	for len(b.Queue) > 0 {
		email := b.Queue[0]
		b.Queue = b.Queue[1:]
		m, ok := c.members[email]
		if !ok {
			continue
		}
		m.Reserved = removeFirst(m.Reserved, isbn)
		m.Notify(fmt.Sprintf("'%s' is now available for you to borrow.", b.Title))
		return email, true
	}
	return "", false
}

// CancelReservation takes the member out of the book's queue.
func (c *Catalog) CancelReservation(isbn, email string) error {
	b, ok := c.books[isbn]
	if !ok {
		return fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}
	if indexOf(b.Queue, email) < 0 {
		return fmt.Errorf("no active reservation for %s on '%s': %w", email, b.Title, ErrNotFound)
	}
	b.Queue = removeFirst(b.Queue, email)
	if m, ok := c.members[email]; ok {
		m.Reserved = removeFirst(m.Reserved, isbn)
	}
	return nil
}

// Position returns the 1-based queue position of email, or 0.
func (c *Catalog) Position(isbn, email string) int {
	b, ok := c.books[isbn]
	if !ok {
		return 0
	}
	return indexOf(b.Queue, email) + 1
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// restore loads persisted books and members as-is. Registration checks are
// skipped; the stored state already passed them.
func (c *Catalog) restore(books []*Book, members []*Member) {
	for _, b := range books {
		if _, ok := c.books[b.ISBN]; ok {
			continue
		}
		c.books[b.ISBN] = b
		c.bookOrder = append(c.bookOrder, b.ISBN)
	}
	for _, m := range members {
		if _, ok := c.members[m.Email]; ok {
			continue
		}
		c.members[m.Email] = m
		c.memberOrder = append(c.memberOrder, m.Email)
	}
}
