package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "maya@lib.org", password: "Reading42"},
		{name: "no at sign", email: "maya.lib.org", password: "Reading42", wantErr: ErrInvalidEmail},
		{name: "no dot in domain", email: "maya@lib", password: "Reading42", wantErr: ErrInvalidEmail},
		{name: "display name form", email: "Maya <maya@lib.org>", password: "Reading42", wantErr: ErrInvalidEmail},
		{name: "too short", email: "maya@lib.org", password: "Read42", wantErr: ErrWeakPassword},
		{name: "length counts characters", email: "maya@lib.org", password: "Äbcdef1", wantErr: ErrWeakPassword},
		{name: "multibyte at minimum length", email: "maya@lib.org", password: "Äbcdefg1"},
		{name: "no digit", email: "maya@lib.org", password: "ReadingList", wantErr: ErrWeakPassword},
		{name: "no uppercase", email: "maya@lib.org", password: "reading42", wantErr: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.email, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Reading42")
	require.NoError(t, err)

	assert.NotEqual(t, "Reading42", hash)
	assert.True(t, VerifyPassword("Reading42", hash))
	assert.False(t, VerifyPassword("reading42", hash))
	assert.False(t, VerifyPassword("Reading42", "not-a-hash"))
}
