package main

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "fits", in: "Dune", max: 10, want: "Dune"},
		{name: "exact length", in: "Dune Messiah", max: 12, want: "Dune Messiah"},
		{name: "ascii", in: "Harry Potter and the Deathly Hallows", max: 15, want: "Harry Potter..."},
		{name: "multibyte kept whole", in: "Les Misérables, tome premier", max: 12, want: "Les Misér..."},
		{name: "multibyte under limit", in: "Éléments", max: 8, want: "Éléments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateString(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.max)
		})
	}
}
