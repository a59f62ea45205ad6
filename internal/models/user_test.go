package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUserID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"John Doe", "2000-JO-DO-10-4-7"},
		{"Jane Smith", "2000-JA-SM-10-19-9"},
		{"Alice Johnson", "2000-AL-JO-1-10-12"},
		{"  Budi   Santoso ", "2000-BU-SA-2-19-11"},
		{"Anna Maria Lee", "2000-AN-MA-LE-1-13-12-12"},
		{"john doe", "2000-JO-DO-42-36-7"},
		{"Jo X", "2000-JO-X-10-24-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateUserID(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := GenerateUserID("Madonna")
	assert.ErrorIs(t, err, ErrNameTooShort)
	_, err = GenerateUserID("   ")
	assert.ErrorIs(t, err, ErrNameTooShort)
}

func TestSuggestEmail(t *testing.T) {
	assert.Equal(t, "john.doe@example.com", SuggestEmail("John Doe"))
	assert.Equal(t, "anna.maria.lee@example.com", SuggestEmail("  Anna  Maria Lee "))
	assert.Equal(t, "@example.com", SuggestEmail(""))
}
