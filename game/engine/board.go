package engine

import "strings"

// CreateBoard returns a board with every cell Empty
func CreateBoard() Board {
	var board Board
	for row := 0; row < BoardRows; row++ {
		for column := 0; column < BoardColumns; column++ {
			board[row][column] = Empty
		}
	}
	return board
}

// GetPlayers returns the two players of a fresh match; player 1 moves first
func GetPlayers() []*Player {
	return []*Player{
		{ID: 1, Board: CreateBoard(), ShipPosition: []Point{}, HitsGiven: []Point{}, Turn: true},
		{ID: 2, Board: CreateBoard(), ShipPosition: []Point{}, HitsGiven: []Point{}, Turn: false},
	}
}

// RenderBoard prints a player's board as text lines: a header of column
// letters followed by one numbered line per row. When revealShips is false
// ship cells are shown as empty water.
func RenderBoard(player *Player, revealShips bool) []string {
	lines := make([]string, 0, BoardRows+1)

	var header strings.Builder
	header.WriteString(" ")
	for _, letter := range ValidLetters {
		header.WriteByte(' ')
		header.WriteRune(letter)
	}
	lines = append(lines, header.String())

	for row := 0; row < BoardRows; row++ {
		var line strings.Builder
		line.WriteByte(byte('1' + row))
		for column := 0; column < BoardColumns; column++ {
			cell := player.Board[row][column]
			if cell == Ship && !revealShips {
				cell = Empty
			}
			if cell == "" {
				cell = Empty
			}
			line.WriteByte(' ')
			line.WriteString(string(cell))
		}
		lines = append(lines, line.String())
	}

	return lines
}

// CountCellState counts the cells of a board holding the given state
func CountCellState(board Board, state CellState) int {
	count := 0
	for _, row := range board {
		for _, cell := range row {
			if cell == state {
				count++
			}
		}
	}
	return count
}
