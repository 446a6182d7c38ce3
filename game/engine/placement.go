package engine

import (
	"fmt"
	"strings"
)

// ValidateLocation reports whether location describes a straight 3-cell
// ship by its two end points, for example "A1 A3" or "f8 h8".
func ValidateLocation(location string) bool {
	return CheckLocation(location) == nil
}

// CheckLocation is ValidateLocation with the reason for a rejection
func CheckLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return ErrEmptyLocation
	}

	tokens := strings.Split(location, " ")
	if len(tokens) != 2 {
		return fmt.Errorf("%w: %q must be two cells separated by a space", ErrMalformedLocation, location)
	}
	for _, token := range tokens {
		if len(token) != 2 {
			return fmt.Errorf("%w: %q must be a letter followed by a digit", ErrMalformedLocation, token)
		}
	}

	points, err := pointsFromLocation(location)
	if err != nil {
		return err
	}

	if !ValidatePointsRanges(points...) {
		return fmt.Errorf("%w: %q", ErrOutOfRange, location)
	}

	if !validShipShape(points[0], points[1]) {
		return fmt.Errorf("%w: %q", ErrInvalidShipShape, location)
	}

	return nil
}

// AddShipPosition writes the ship described by location onto the player's
// board and appends its cells to ShipPosition. The location must already
// have passed ValidateLocation; only unparsable or off-board end points are
// reported, the shape is not checked again.
func AddShipPosition(location string, player *Player) error {
	points, err := pointsFromLocation(location)
	if err != nil {
		return err
	}
	if len(points) != 2 || !ValidatePointsRanges(points...) {
		return fmt.Errorf("%w: %q", ErrOutOfRange, location)
	}

	first, last := points[0], points[1]
	switch {
	case first.Column == last.Column:
		for row := min(first.Row, last.Row); row <= max(first.Row, last.Row); row++ {
			placeShipCell(player, Point{Row: row, Column: first.Column})
		}
	case first.Row == last.Row:
		for column := min(first.Column, last.Column); column <= max(first.Column, last.Column); column++ {
			placeShipCell(player, Point{Row: first.Row, Column: column})
		}
	}

	return nil
}

func placeShipCell(player *Player, p Point) {
	player.Board[p.Row][p.Column] = Ship
	player.ShipPosition = append(player.ShipPosition, p)
}

// validShipShape checks that two end points are ShipSize-1 apart in one line
func validShipShape(a, b Point) bool {
	if a.Column == b.Column && validDistance(a.Row, b.Row) {
		return true
	}
	if a.Row == b.Row && validDistance(a.Column, b.Column) {
		return true
	}
	return false
}

func validDistance(a, b int) bool {
	return abs(a-b) == ShipSize-1
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
