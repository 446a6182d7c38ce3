// Package console runs a hot-seat Battleship match over a text stream.
//
// Both players share the same input: each is prompted for a ship, then
// they alternate shots until one ship sinks. Every prompt and reply comes
// from the engine's configured messages. When the match ends both boards
// are printed with ships revealed.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/mcp-training/battleship/game/engine"
)

// quitCommands end the loop early without an error
var quitCommands = map[string]bool{"quit": true, "exit": true}

// Run plays one match on eng, reading moves from in and writing to out.
// It returns io.ErrUnexpectedEOF if the input ends before the match does,
// and ctx.Err() if the context is cancelled.
func Run(ctx context.Context, in io.Reader, out io.Writer, eng *engine.GameEngine) error {
	// Releases the reader when Run returns before the input ends
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := readLines(ctx, in)

	fmt.Fprintln(out, eng.GetState().Message)

	for !eng.IsGameOver() {
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				return io.ErrUnexpectedEOF
			}
			line = strings.TrimSpace(l)
		}

		if quitCommands[strings.ToLower(line)] {
			fmt.Fprintln(out, "Bye.")
			return nil
		}

		// Rejections already set the retry prompt on the state
		switch eng.GetPhase() {
		case engine.PhasePlacement:
			eng.PlaceShip(line)
		case engine.PhaseBattle:
			eng.Shoot(line)
		}

		fmt.Fprintln(out, eng.GetState().Message)
	}

	PrintBoards(out, eng)
	return nil
}

// readLines scans in on its own goroutine. lines is closed when the input
// ends or ctx is done; readErr then holds the scanner error, if any.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	return lines, readErr
}

// PrintBoards writes every player's board with ships revealed
func PrintBoards(out io.Writer, eng *engine.GameEngine) {
	for _, player := range eng.GetState().Players {
		fmt.Fprintf(out, "Player %d Board:\n", player.ID)
		for _, line := range engine.RenderBoard(player, true) {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out)
	}
}
