package library

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity cutoffs used by catalog lookups and generic recommendations.
const (
	LookupCutoff           = 0.5
	GenericRecommendCutoff = 0.3
	lookupLimit            = 5
)

// CloseMatches returns up to n candidates whose similarity to query is at
// least cutoff, best first. Similarity is the matching-blocks ratio over
// lowercased runes; equal scores keep candidate order.
func CloseMatches(query string, candidates []string, n int, cutoff float64) []string {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		label string
		score float64
	}

	// The query is seq2 so its b2j index is built once.
	m := difflib.NewMatcher(nil, runes(query))
	var hits []scored
	for _, c := range candidates {
		m.SetSeq1(runes(c))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if r := m.Ratio(); r >= cutoff {
			hits = append(hits, scored{label: c, score: r})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > n {
		hits = hits[:n]
	}

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.label)
	}
	return out
}

func runes(s string) []string {
	return strings.Split(strings.ToLower(s), "")
}
