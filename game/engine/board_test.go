package engine

import "testing"

func TestCreateBoard(t *testing.T) {
	board := CreateBoard()

	if got := CountCellState(board, Empty); got != BoardRows*BoardColumns {
		t.Errorf("Expected %d empty cells, got %d", BoardRows*BoardColumns, got)
	}
}

func TestGetPlayers(t *testing.T) {
	players := GetPlayers()

	if len(players) != 2 {
		t.Fatalf("Expected 2 players, got %d", len(players))
	}
	if players[0].ID != 1 || players[1].ID != 2 {
		t.Errorf("Expected ids 1 and 2, got %d and %d", players[0].ID, players[1].ID)
	}
	if !players[0].Turn || players[1].Turn {
		t.Error("Expected only player 1 to hold the turn")
	}

	// Boards are independent values
	players[0].Board[0][0] = Ship
	if players[1].Board[0][0] != Empty {
		t.Error("Expected player boards not to share cells")
	}
}

func TestRenderBoard(t *testing.T) {
	player := GetPlayers()[0]
	if err := AddShipPosition("B2 B4", player); err != nil {
		t.Fatalf("AddShipPosition failed: %v", err)
	}
	player.Board[7][7] = Hit

	revealed := RenderBoard(player, true)
	if len(revealed) != BoardRows+1 {
		t.Fatalf("Expected %d lines, got %d", BoardRows+1, len(revealed))
	}

	want := []string{
		"  A B C D E F G H",
		"1 - - - - - - - -",
		"2 - S - - - - - -",
		"3 - S - - - - - -",
		"4 - S - - - - - -",
		"5 - - - - - - - -",
		"6 - - - - - - - -",
		"7 - - - - - - - -",
		"8 - - - - - - - X",
	}
	for i, line := range want {
		if revealed[i] != line {
			t.Errorf("Line %d: expected %q, got %q", i, line, revealed[i])
		}
	}

	hidden := RenderBoard(player, false)
	if hidden[2] != "2 - - - - - - - -" {
		t.Errorf("Expected ship to be hidden, got %q", hidden[2])
	}
	if hidden[8] != "8 - - - - - - - X" {
		t.Errorf("Expected miss marker to stay visible, got %q", hidden[8])
	}
}

func TestRenderBoard_ZeroValueCells(t *testing.T) {
	player := &Player{ID: 1}

	lines := RenderBoard(player, true)
	if lines[1] != "1 - - - - - - - -" {
		t.Errorf("Expected unset cells to render as empty, got %q", lines[1])
	}
}
