package engine

import (
	"fmt"
	"strings"
)

// ValidateShootLocation reports whether location is a legal new shot for
// player: a single on-board cell the player has not fired at before.
func ValidateShootLocation(location string, player *Player) bool {
	return CheckShootLocation(location, player) == nil
}

// CheckShootLocation is ValidateShootLocation with the reason for a
// rejection. A repeated shot yields ErrDuplicateShot.
func CheckShootLocation(location string, player *Player) error {
	if strings.TrimSpace(location) == "" {
		return ErrEmptyLocation
	}
	if len(location) != 2 {
		return fmt.Errorf("%w: %q must be a letter followed by a digit", ErrMalformedLocation, location)
	}

	p, err := ParsePoint(location)
	if err != nil {
		return err
	}

	if !ValidatePointsRanges(p) {
		return fmt.Errorf("%w: %q", ErrOutOfRange, location)
	}

	if containsPoint(player.HitsGiven, p) {
		return fmt.Errorf("%w: %s", ErrDuplicateShot, FormatPoint(p))
	}

	return nil
}

// SetShoot fires current's shot at next and reports whether it hit.
//
// A hit only increments next.SuccessfulShotsReceived; a miss marks the
// target board cell with Hit. Hits are deliberately left unmarked on the
// board.
func SetShoot(location string, current, next *Player) (bool, error) {
	p, err := ParsePoint(location)
	if err != nil {
		return false, err
	}
	if !ValidatePointsRanges(p) {
		return false, fmt.Errorf("%w: %q", ErrOutOfRange, location)
	}

	current.HitsGiven = append(current.HitsGiven, p)

	if containsPoint(next.ShipPosition, p) {
		next.SuccessfulShotsReceived++
		return true, nil
	}

	next.Board[p.Row][p.Column] = Hit
	return false, nil
}

// ValidateShipSink reports whether the target's ship has taken exactly
// ShotsToSink hits
func ValidateShipSink(target *Player) bool {
	return target.SuccessfulShotsReceived == ShotsToSink
}

func containsPoint(points []Point, p Point) bool {
	for _, q := range points {
		if q.Row == p.Row && q.Column == p.Column {
			return true
		}
	}
	return false
}
