package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isbns(books []*Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ISBN)
	}
	return out
}

func seededCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	require.NoError(t, c.AddBook(NewBook("D1", "Dune", "Frank Herbert", "Sci-Fi", "", 1)))
	require.NoError(t, c.AddBook(NewBook("D2", "Dune Messiah", "Frank Herbert", "Sci-Fi", "", 2)))
	require.NoError(t, c.AddBook(NewBook("H1", "Hamlet", "William Shakespeare", "Drama", "", 1)))
	require.NoError(t, c.AddMember(NewMember("Mark", 30, "mark@example.com", "")))
	require.NoError(t, c.AddMember(NewMember("Mira", 25, "mira@example.com", "")))
	return c
}

func TestFindBooks_SubstringAcrossFields(t *testing.T) {
	c := seededCatalog(t)

	assert.Equal(t, []string{"D1", "D2"}, isbns(c.FindBooks("  DUNE ")), "title")
	assert.Equal(t, []string{"D1", "D2"}, isbns(c.FindBooks("herbert")), "author")
	assert.Equal(t, []string{"H1"}, isbns(c.FindBooks("h1")), "isbn")
	assert.Equal(t, []string{"H1"}, isbns(c.FindBooks("drama")), "genre")
}

func TestFindBooks_FuzzyFallback(t *testing.T) {
	c := seededCatalog(t)

	assert.Equal(t, []string{"H1"}, isbns(c.FindBooks("hmlet")))
	assert.Equal(t, []string{"D1"}, isbns(c.FindBooks("dnue")))
	assert.Empty(t, c.FindBooks("zzzz"))
}

func TestFindBooks_SubstringWinsOverFuzzy(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddBook(NewBook("A", "Dune", "Frank Herbert", "Sci-Fi", "", 1)))
	require.NoError(t, c.AddBook(NewBook("B", "Dunette", "Anon", "Poetry", "", 1)))

	// "dune" is a substring of both titles; no fuzzy ranking is applied.
	assert.Equal(t, []string{"A", "B"}, isbns(c.FindBooks("dune")))
}

func TestFindMember_ReturnsOnlyFirstHit(t *testing.T) {
	c := seededCatalog(t)

	// Both members match; the single-result contract is intentional.
	m := c.FindMember("example.com")
	require.NotNil(t, m)
	assert.Equal(t, "mark@example.com", m.Email)

	// Fuzzy over names: "Mira" also clears the cutoff but only Mark is returned.
	m = c.FindMember("mrk")
	require.NotNil(t, m)
	assert.Equal(t, "Mark", m.Name)

	assert.Nil(t, c.FindMember("zed@lib.org"))
}

func TestAddBook_DuplicateISBN(t *testing.T) {
	c := seededCatalog(t)

	err := c.AddBook(NewBook("D1", "Another Dune", "Someone", "Sci-Fi", "", 3))
	assert.ErrorIs(t, err, ErrConflict)

	b, ok := c.Book("D1")
	require.True(t, ok)
	assert.Equal(t, "Dune", b.Title)
	assert.Len(t, c.Books(), 3)
}

func TestAddMember_Conflicts(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddMember(NewMember("Bo", 40, "bo@lib.org", "")))

	assert.ErrorIs(t, c.AddMember(NewMember("Other Bo", 41, "bo@lib.org", "")), ErrConflict)
	// A partial hit on an existing email also blocks registration.
	assert.ErrorIs(t, c.AddMember(NewMember("Oscar", 22, "o@lib.org", "")), ErrConflict)
	assert.Len(t, c.Members(), 1)
}

func TestRemove_IsIdempotent(t *testing.T) {
	c := seededCatalog(t)

	c.RemoveBook("H1")
	c.RemoveBook("H1")
	c.RemoveBook("missing")
	c.RemoveMember("mira@example.com")
	c.RemoveMember("mira@example.com")

	assert.Equal(t, []string{"D1", "D2"}, isbns(c.Books()))
	assert.Len(t, c.Members(), 1)
	_, ok := c.Member("mira@example.com")
	assert.False(t, ok)
}

func TestReserve(t *testing.T) {
	c := seededCatalog(t)

	err := c.Reserve("D1", "mark@example.com")
	assert.ErrorIs(t, err, ErrAvailableNow, "copies on the shelf")

	dune, _ := c.Book("D1")
	dune.AvailableCopies = 0

	require.NoError(t, c.Reserve("D1", "mark@example.com"))
	assert.ErrorIs(t, c.Reserve("D1", "mark@example.com"), ErrAlreadyReserved)
	require.NoError(t, c.Reserve("D1", "mira@example.com"))

	assert.Equal(t, []string{"mark@example.com", "mira@example.com"}, dune.Queue)
	assert.Equal(t, 2, c.Position("D1", "mira@example.com"))

	mark, _ := c.Member("mark@example.com")
	assert.Equal(t, []string{"D1"}, mark.Reserved)
	assert.Len(t, mark.Notifications, 1)

	assert.ErrorIs(t, c.Reserve("nope", "mark@example.com"), ErrNotFound)
	assert.ErrorIs(t, c.Reserve("D1", "ghost@example.com"), ErrNotFound)
}

func TestReleaseNextReservation_FIFO(t *testing.T) {
	c := seededCatalog(t)
	dune, _ := c.Book("D1")
	dune.AvailableCopies = 0
	require.NoError(t, c.Reserve("D1", "mark@example.com"))
	require.NoError(t, c.Reserve("D1", "mira@example.com"))

	email, ok := c.ReleaseNextReservation("D1")
	require.True(t, ok)
	assert.Equal(t, "mark@example.com", email)
	assert.Equal(t, 0, dune.AvailableCopies, "no copy is held for the reserver")

	mark, _ := c.Member("mark@example.com")
	assert.Contains(t, mark.Notifications, "'Dune' is now available for you to borrow.")
	assert.Empty(t, mark.Reserved)

	email, ok = c.ReleaseNextReservation("D1")
	require.True(t, ok)
	assert.Equal(t, "mira@example.com", email)

	_, ok = c.ReleaseNextReservation("D1")
	assert.False(t, ok)
}

func TestReleaseNextReservation_SkipsRemovedMembers(t *testing.T) {
	c := seededCatalog(t)
	dune, _ := c.Book("D1")
	dune.AvailableCopies = 0
	require.NoError(t, c.Reserve("D1", "mark@example.com"))
	require.NoError(t, c.Reserve("D1", "mira@example.com"))
	c.RemoveMember("mark@example.com")

	email, ok := c.ReleaseNextReservation("D1")
	require.True(t, ok)
	assert.Equal(t, "mira@example.com", email)
	assert.Empty(t, dune.Queue)
}

func TestCancelReservation(t *testing.T) {
	c := seededCatalog(t)
	dune, _ := c.Book("D1")
	dune.AvailableCopies = 0
	require.NoError(t, c.Reserve("D1", "mark@example.com"))

	require.NoError(t, c.CancelReservation("D1", "mark@example.com"))
	assert.Empty(t, dune.Queue)
	assert.ErrorIs(t, c.CancelReservation("D1", "mark@example.com"), ErrNotFound)
}
