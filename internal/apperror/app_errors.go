package apperror

import "errors"

var (
	ErrInvalidMove       = errors.New("invalid move")
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrNotInGame         = errors.New("player is not in a game")
	ErrGameFull          = errors.New("game already has two players")
	ErrAlreadyInGame     = errors.New("player is already in another game")
	ErrGameNotFound      = errors.New("game not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrUnknownGameType   = errors.New("unknown game type")
	ErrHistoryNotEnabled = errors.New("game history is not enabled")
)
