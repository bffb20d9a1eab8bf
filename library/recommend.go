package library

// RecommendMode selects how Recommend ranks titles.
type RecommendMode string

const (
	RecommendGeneric      RecommendMode = "generic"
	RecommendPersonalized RecommendMode = "personalized"
)

const defaultRecommendations = 3

// RecommendRequest carries the inputs for both modes. Generic mode needs
// QueryTitle; personalized mode needs MemberEmail.
type RecommendRequest struct {
	Mode        RecommendMode
	MemberEmail string
	QueryTitle  string
	N           int
}

// Recommend returns up to N book titles. Generic mode fuzzy-matches the
// query title against the whole catalog. Personalized mode picks the most
// frequent genre among the member's borrowed books and suggests other
// titles in it.
func (s *LendingService) Recommend(req RecommendRequest) []string {
	n := req.N
	if n <= 0 {
		n = defaultRecommendations
	}
	books := s.catalog.Books()
	if len(books) == 0 {
		return nil
	}

	switch req.Mode {
	case RecommendGeneric:
		if req.QueryTitle == "" {
			return nil
		}
		titles := make([]string, len(books))
		for i, b := range books {
			titles[i] = b.Title
		}
		return CloseMatches(req.QueryTitle, titles, n, GenericRecommendCutoff)

	case RecommendPersonalized:
		m, ok := s.catalog.Member(req.MemberEmail)
		if !ok || len(m.Borrowed) == 0 {
			return nil
		}
		genre := s.favoriteGenre(m)
		if genre == "" {
			return nil
		}
		var out []string
		for _, b := range books {
			if len(out) == n {
				break
			}
			if b.Genre == genre && !m.HasBorrowed(b.ISBN) {
				out = append(out, b.Title)
			}
		}
		return out
	}
	return nil
}

// favoriteGenre counts genres of the member's borrowed books; ties go to the
// genre seen first.
func (s *LendingService) favoriteGenre(m *Member) string {
	counts := make(map[string]int)
	var order []string
	for _, isbn := range m.Borrowed {
		b, ok := s.catalog.Book(isbn)
		if !ok || b.Genre == "" {
			continue
		}
		if counts[b.Genre] == 0 {
			order = append(order, b.Genre)
		}
		counts[b.Genre]++
	}

	best := ""
	for _, g := range order {
		if best == "" || counts[g] > counts[best] {
			best = g
		}
	}
	return best
}
