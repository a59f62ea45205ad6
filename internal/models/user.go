package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// User is a person bookings are made for.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

var ErrNameTooShort = errors.New("name must have at least two words")

// GenerateUserID derives the user id from a full name: the first two letters
// of every word, each word's first-letter code minus 64, then the letter count.
// "John Doe" becomes 2000-JO-DO-10-4-7.
func GenerateUserID(name string) (string, error) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", ErrNameTooShort
	}

	prefixes := make([]string, 0, len(parts))
	codes := make([]string, 0, len(parts))
	letters := 0
	for _, p := range parts {
		runes := []rune(p)
		prefixes = append(prefixes, strings.ToUpper(string(runes[:min(2, len(runes))])))
		codes = append(codes, strconv.Itoa(int(runes[0])-64))
		letters += utf8.RuneCountInString(p)
	}

	return fmt.Sprintf("2000-%s-%s-%d", strings.Join(prefixes, "-"), strings.Join(codes, "-"), letters), nil
}

// SuggestEmail proposes an address from a name: lower case, words joined by dots.
func SuggestEmail(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ".")) + "@example.com"
}
