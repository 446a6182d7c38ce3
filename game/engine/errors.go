package engine

import "errors"

var (
	ErrEmptyLocation     = errors.New("location is empty")
	ErrMalformedLocation = errors.New("location is malformed")
	ErrOutOfRange        = errors.New("location is outside the board")
	ErrInvalidShipShape  = errors.New("ship must span exactly 3 cells in one row or column")
	ErrDuplicateShot     = errors.New("location was already shot")
	ErrWrongPhase        = errors.New("action not allowed in the current phase")
	ErrGameOver          = errors.New("game is over")
	ErrShipAlreadyPlaced = errors.New("ship already placed")
)

// ReasonCode maps an engine error to a stable machine-friendly code.
// It returns "" for nil and "invalid" for errors it does not know.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyLocation):
		return "empty"
	case errors.Is(err, ErrMalformedLocation):
		return "malformed"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrInvalidShipShape):
		return "invalid_shape"
	case errors.Is(err, ErrDuplicateShot):
		return "duplicate_shot"
	case errors.Is(err, ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, ErrGameOver):
		return "game_over"
	case errors.Is(err, ErrShipAlreadyPlaced):
		return "already_placed"
	default:
		return "invalid"
	}
}
