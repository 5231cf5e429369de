package service

import (
	"errors"
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	ChooseMove(game *entity.Game) (entity.Move, error)
}

type botService struct {
	intN func(n int) int
}

// NewBotService returns a bot that picks a uniformly random legal move.
func NewBotService() BotService {
	return &botService{
		intN: rand.IntN, //nolint: gosec // it's ok
	}
}

func (that *botService) ChooseMove(game *entity.Game) (entity.Move, error) {
	moves := tictactoe.EnumerateLegalMoves(game.Board, game.CurrentPlayer)
	if len(moves) == 0 {
		return entity.Move{}, ErrNoAvailableMoves
	}

	return moves[that.intN(len(moves))], nil
}
