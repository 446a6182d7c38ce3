package main

import (
	"fmt"
	"math/rand"

	"github.com/wricardo/mcp-training/battleship/game/engine"
)

// ShipLength is the size of the single ship every player places
const ShipLength = 3

// SystematicStrategy picks shots for one player using hunt and target modes.
//
// Hunting walks a diagonal lattice where (row+column) mod 3 is fixed. Any
// three cells in a row or column cover every residue, so the lattice is
// guaranteed to touch the enemy ship. Once a hit lands the strategy targets
// the neighbors, then extends along the line the hits form.
type SystematicStrategy struct {
	rng *rand.Rand

	shot      map[engine.Point]bool
	hits      []engine.Point // hits on the still floating ship
	huntOrder []engine.Point
	next      int
}

func NewSystematicStrategy(rng *rand.Rand) *SystematicStrategy {
	s := &SystematicStrategy{rng: rng}
	s.Reset()
	return s
}

// Reset forgets every shot and plans a fresh hunting order.
func (s *SystematicStrategy) Reset() {
	s.shot = make(map[engine.Point]bool)
	s.hits = nil
	s.next = 0
	s.planHuntOrder()
}

// planHuntOrder shuffles the lattice cells for a random residue, followed by
// the remaining cells as a fallback.
func (s *SystematicStrategy) planHuntOrder() {
	residue := s.rng.Intn(ShipLength)

	var lattice, rest []engine.Point
	for row := 0; row < engine.BoardRows; row++ {
		for col := 0; col < engine.BoardColumns; col++ {
			p := engine.Point{Row: row, Column: col}
			if (row+col)%ShipLength == residue {
				lattice = append(lattice, p)
			} else {
				rest = append(rest, p)
			}
		}
	}

	s.rng.Shuffle(len(lattice), func(i, j int) { lattice[i], lattice[j] = lattice[j], lattice[i] })
	s.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	s.huntOrder = append(lattice, rest...)
}

// NextShot returns the location to fire at, or "" once every cell was shot.
func (s *SystematicStrategy) NextShot() string {
	if candidates := s.targetCandidates(); len(candidates) > 0 {
		return engine.FormatPoint(candidates[0])
	}

	// Stale hits with no open neighbor cannot lead anywhere
	s.hits = nil

	for s.next < len(s.huntOrder) {
		p := s.huntOrder[s.next]
		s.next++
		if !s.shot[p] {
			return engine.FormatPoint(p)
		}
	}
	return ""
}

// Record stores the outcome of a shot this strategy asked for.
func (s *SystematicStrategy) Record(location string, hit bool) error {
	p, err := engine.ParsePoint(location)
	if err != nil {
		return fmt.Errorf("record shot %q: %w", location, err)
	}
	s.shot[p] = true
	if hit {
		s.hits = append(s.hits, p)
	}
	return nil
}

// ShotsTaken reports how many distinct cells were fired at.
func (s *SystematicStrategy) ShotsTaken() int {
	return len(s.shot)
}

// targetCandidates lists unshot cells that could hold the rest of the ship.
func (s *SystematicStrategy) targetCandidates() []engine.Point {
	switch len(s.hits) {
	case 0:
		return nil
	case 1:
		h := s.hits[0]
		return s.open([]engine.Point{
			{Row: h.Row - 1, Column: h.Column},
			{Row: h.Row + 1, Column: h.Column},
			{Row: h.Row, Column: h.Column - 1},
			{Row: h.Row, Column: h.Column + 1},
		})
	}

	minP, maxP := s.hits[0], s.hits[0]
	for _, h := range s.hits[1:] {
		if h.Row < minP.Row || h.Column < minP.Column {
			minP = h
		}
		if h.Row > maxP.Row || h.Column > maxP.Column {
			maxP = h
		}
	}

	if minP.Row == maxP.Row {
		return s.open([]engine.Point{
			{Row: minP.Row, Column: minP.Column - 1},
			{Row: maxP.Row, Column: maxP.Column + 1},
		})
	}
	return s.open([]engine.Point{
		{Row: minP.Row - 1, Column: minP.Column},
		{Row: maxP.Row + 1, Column: maxP.Column},
	})
}

func (s *SystematicStrategy) open(points []engine.Point) []engine.Point {
	var out []engine.Point
	for _, p := range points {
		if engine.ValidatePointsRanges(p) && !s.shot[p] {
			out = append(out, p)
		}
	}
	return out
}

// RandomPlacement returns a valid ship location such as "C2 C4".
func RandomPlacement(rng *rand.Rand) string {
	var start, end engine.Point
	if rng.Intn(2) == 0 {
		start = engine.Point{Row: rng.Intn(engine.BoardRows), Column: rng.Intn(engine.BoardColumns - ShipLength + 1)}
		end = engine.Point{Row: start.Row, Column: start.Column + ShipLength - 1}
	} else {
		start = engine.Point{Row: rng.Intn(engine.BoardRows - ShipLength + 1), Column: rng.Intn(engine.BoardColumns)}
		end = engine.Point{Row: start.Row + ShipLength - 1, Column: start.Column}
	}
	return engine.FormatPoint(start) + " " + engine.FormatPoint(end)
}
