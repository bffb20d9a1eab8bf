package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`books:
  - isbn: "9780441172719"
    title: Dune
    author: Frank Herbert
    genre: Sci-Fi
    copies: 2
  - isbn: "9780743477123"
    title: Hamlet
    author: William Shakespeare
    genre: Drama
    description: The Prince of Denmark.
`), 0o600))

	books, err := readSeed(path)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, seedBook{ISBN: "9780441172719", Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Copies: 2}, books[0])
	assert.Equal(t, "The Prince of Denmark.", books[1].Description)
	assert.Zero(t, books[1].Copies)
}

func TestReadSeed_Errors(t *testing.T) {
	_, err := readSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read seed file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("books: [unclosed"), 0o600))
	_, err = readSeed(path)
	assert.ErrorContains(t, err, "parse seed file")
}
