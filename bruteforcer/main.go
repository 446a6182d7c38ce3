// Command bruteforcer plays Battleship against itself over the REST API.
//
// Both players are driven by a SystematicStrategy: ships are placed at
// random and shots follow hunt and target modes until one ship sinks. It is
// useful for smoke-testing a running server and for watching a match on a
// WebSocket client.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/service"
)

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends a JSON request and decodes a 2xx answer into result.
func (c *Client) do(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) CreateSession(configID string) (*engine.GameState, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState() (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) Reset() (*engine.GameState, error) {
	var result service.ResetResult
	if err := c.do(http.MethodPost, c.sessionPath("/reset"), nil, &result); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return result.GameState, nil
}

func (c *Client) PlaceShip(location string) (*service.PlacementResult, error) {
	var result service.PlacementResult
	if err := c.do(http.MethodPost, c.sessionPath("/place"), map[string]string{"location": location}, &result); err != nil {
		return nil, fmt.Errorf("place ship: %w", err)
	}
	return &result, nil
}

func (c *Client) Shoot(location string) (*service.ShotResult, error) {
	var result service.ShotResult
	if err := c.do(http.MethodPost, c.sessionPath("/shoot"), map[string]string{"location": location}, &result); err != nil {
		return nil, fmt.Errorf("shoot: %w", err)
	}
	return &result, nil
}

// MatchResult summarizes one finished match.
type MatchResult struct {
	Winner int
	Shots  map[int]int
	Moves  int
}

// playMatch places both ships and alternates shots until the match ends.
// The session must be in the placement phase.
func playMatch(client *Client, rng *rand.Rand, delay time.Duration) (*MatchResult, error) {
	state, err := client.GetState()
	if err != nil {
		return nil, err
	}

	strategies := map[int]*SystematicStrategy{
		1: NewSystematicStrategy(rng),
		2: NewSystematicStrategy(rng),
	}

	for state.Phase == engine.PhasePlacement {
		location := RandomPlacement(rng)
		result, err := client.PlaceShip(location)
		if err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, fmt.Errorf("placement %s rejected: %s", location, result.Reason)
		}
		log.Debug().Int("player", result.PlayerID).Str("location", result.Location).Msg("ship placed")
		state = result.GameState
	}

	// Every cell for both players, plus slack for the final check
	maxMoves := 2*engine.BoardRows*engine.BoardColumns + 1
	moves := 0
	for !state.GameOver {
		if moves >= maxMoves {
			return nil, fmt.Errorf("no winner after %d moves", moves)
		}

		strategy := strategies[state.CurrentPlayer]
		if strategy == nil {
			return nil, fmt.Errorf("unexpected current player %d", state.CurrentPlayer)
		}

		location := strategy.NextShot()
		if location == "" {
			return nil, fmt.Errorf("player %d has no cells left to shoot", state.CurrentPlayer)
		}

		result, err := client.Shoot(location)
		if err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, fmt.Errorf("shot %s rejected: %s", location, result.Reason)
		}
		if err := strategy.Record(result.Location, result.Hit); err != nil {
			return nil, err
		}

		log.Debug().Int("player", result.ShooterID).Str("location", result.Location).Bool("hit", result.Hit).Msg("shot")
		state = result.GameState
		moves++

		if delay > 0 {
			time.Sleep(delay)
		}
	}

	return &MatchResult{
		Winner: state.Winner,
		Shots:  map[int]int{1: strategies[1].ShotsTaken(), 2: strategies[2].ShotsTaken()},
		Moves:  moves,
	}, nil
}

// openSession resumes a saved session when possible, otherwise creates one
// and remembers its ID in sessionFile.
func openSession(client *Client, sessionID, configID, sessionFile string) error {
	if sessionID == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			sessionID = string(bytes.TrimSpace(data))
		}
	}

	if sessionID != "" {
		client.sessionID = sessionID
		if _, err := client.GetState(); err == nil {
			log.Info().Str("session", sessionID).Msg("Resuming session")
			return nil
		}
		log.Warn().Str("session", sessionID).Msg("Failed to resume session, creating a new one")
	}

	if _, err := client.CreateSession(configID); err != nil {
		return err
	}
	log.Info().Str("session", client.sessionID).Msg("Session created")

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Warn().Err(err).Msg("Failed to save session ID")
		}
	}
	return nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("v") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	serverURL := cmd.String("url")
	log.Info().Str("url", serverURL).Msg("Connecting to game server")
	client := NewClient(serverURL)

	if err := openSession(client, cmd.String("continue"), cmd.String("config"), cmd.String("session-file")); err != nil {
		return err
	}

	seed := int64(cmd.Int("seed"))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	delay := time.Duration(cmd.Int("delay")) * time.Millisecond

	games := int(cmd.Int("games"))
	wins := map[int]int{}
	for game := 1; game <= games; game++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := client.Reset(); err != nil {
			return err
		}

		result, err := playMatch(client, rng, delay)
		if err != nil {
			return fmt.Errorf("game %d: %w", game, err)
		}
		wins[result.Winner]++

		log.Info().
			Int("game", game).
			Int("winner", result.Winner).
			Int("moves", result.Moves).
			Int("p1_shots", result.Shots[1]).
			Int("p2_shots", result.Shots[2]).
			Msg("Match finished")
	}

	log.Info().Int("games", games).Int("p1_wins", wins[1]).Int("p2_wins", wins[2]).Str("session", client.sessionID).Msg("Done")
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play Battleship against itself over the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Game configuration for new sessions (classic, fog_of_war)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "File remembering the last session ID"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "Number of matches to play"},
			&cli.IntFlag{Name: "seed", Usage: "Random seed (0 = time based)"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between shots in milliseconds"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("bruteforcer failed")
	}
}
