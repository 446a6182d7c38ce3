package engine

import (
	"errors"
	"testing"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		token   string
		want    Point
		wantErr error
	}{
		{"A1", Point{Row: 0, Column: 0}, nil},
		{"a1", Point{Row: 0, Column: 0}, nil},
		{"H8", Point{Row: 7, Column: 7}, nil},
		{"c5", Point{Row: 4, Column: 2}, nil},
		{"A0", Point{Row: -1, Column: 0}, nil}, // rows are not range checked
		{"A9", Point{Row: 8, Column: 0}, nil},
		{"I1", Point{}, ErrOutOfRange},
		{"z3", Point{}, ErrOutOfRange},
		{"11", Point{}, ErrMalformedLocation},
		{"A-", Point{}, ErrMalformedLocation},
		{"A", Point{}, ErrMalformedLocation},
		{"A11", Point{}, ErrMalformedLocation},
		{"", Point{}, ErrMalformedLocation},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParsePoint(tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParsePoint(%q) error = %v, want %v", tt.token, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePoint(%q) unexpected error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParsePoint(%q) = %+v, want %+v", tt.token, got, tt.want)
			}
		})
	}
}

func TestValidatePointsRanges(t *testing.T) {
	if !ValidatePointsRanges(Point{0, 0}, Point{7, 7}) {
		t.Error("Expected corners to be in range")
	}
	if !ValidatePointsRanges() {
		t.Error("Expected no points to be trivially in range")
	}

	outside := []Point{{-1, 0}, {0, -1}, {8, 0}, {0, 8}}
	for _, p := range outside {
		if ValidatePointsRanges(Point{0, 0}, p) {
			t.Errorf("Expected %+v to be out of range", p)
		}
	}
}

func TestFormatPoint(t *testing.T) {
	for _, token := range []string{"A1", "B5", "H8", "D3"} {
		p, err := ParsePoint(token)
		if err != nil {
			t.Fatalf("ParsePoint(%q): %v", token, err)
		}
		if got := FormatPoint(p); got != token {
			t.Errorf("FormatPoint(%+v) = %q, want %q", p, got, token)
		}
	}
}
