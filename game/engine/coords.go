package engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParsePoint converts a two character token such as "B5" into a Point.
// The letter selects the column (case-insensitive, A-H) and the digit d
// selects row d-1. The row is not range checked here: "A0" yields row -1
// and "A9" yields row 8; use ValidatePointsRanges for that.
func ParsePoint(token string) (Point, error) {
	if len(token) != 2 {
		return Point{}, fmt.Errorf("%w: %q must be a letter followed by a digit", ErrMalformedLocation, token)
	}

	letter, _ := utf8.DecodeRuneInString(token)
	column := columnFromLetter(letter)
	if column < 0 {
		if unicode.IsLetter(letter) {
			return Point{}, fmt.Errorf("%w: column %q is not in %s", ErrOutOfRange, letter, ValidLetters)
		}
		return Point{}, fmt.Errorf("%w: %q does not start with a column letter", ErrMalformedLocation, token)
	}

	digit := token[1]
	if digit < '0' || digit > '9' {
		return Point{}, fmt.Errorf("%w: row %q is not a digit", ErrMalformedLocation, digit)
	}

	return Point{Row: int(digit-'0') - 1, Column: column}, nil
}

// FormatPoint converts a Point back to its "<Letter><Digit>" form
func FormatPoint(p Point) string {
	if p.Column < 0 || p.Column >= len(ValidLetters) {
		return fmt.Sprintf("?%d", p.Row+1)
	}
	return fmt.Sprintf("%c%d", ValidLetters[p.Column], p.Row+1)
}

// ValidatePointsRanges reports whether every point lies on the board
func ValidatePointsRanges(points ...Point) bool {
	for _, p := range points {
		if p.Column < 0 || p.Column >= BoardColumns {
			return false
		}
		if p.Row < 0 || p.Row >= BoardRows {
			return false
		}
	}
	return true
}

// NormalizeLocation upper-cases a location string for display and history
func NormalizeLocation(location string) string {
	return strings.ToUpper(strings.TrimSpace(location))
}

// columnFromLetter returns the index of letter in ValidLetters, or -1
func columnFromLetter(letter rune) int {
	return strings.IndexRune(ValidLetters, unicode.ToUpper(letter))
}

// pointsFromLocation splits a space separated location and parses each token
func pointsFromLocation(location string) ([]Point, error) {
	tokens := strings.Split(location, " ")
	points := make([]Point, 0, len(tokens))
	for _, token := range tokens {
		p, err := ParsePoint(token)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}
