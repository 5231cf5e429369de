package service

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotService_ChooseMove(t *testing.T) {
	t.Run("Picks an empty cell for the current player", func(t *testing.T) {
		// Given: a board with a single free cell and O to move
		game := entity.NewGame("g1", entity.WithBotType)
		game.Board = entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerX, entity.PlayerO, entity.PlayerO,
			entity.PlayerO, entity.EmptyCell, entity.PlayerX,
		}
		game.CurrentPlayer = entity.PlayerO

		// When: the bot chooses a move
		move, err := NewBotService().ChooseMove(game)

		// Then: it takes the only free cell as O
		require.NoError(t, err)
		assert.Equal(t, entity.Move{Cell: 7, Player: entity.PlayerO}, move)
	})

	t.Run("Uses the random index over the legal moves", func(t *testing.T) {
		// Given: a bot whose random source always picks the last option
		bot := &botService{intN: func(n int) int { return n - 1 }}
		game := entity.NewGame("g1", entity.WithBotType)
		game.Board[8] = entity.PlayerX

		// When: choosing a move on a board where only cell 8 is taken
		move, err := bot.ChooseMove(game)

		// Then: the highest free cell is chosen
		require.NoError(t, err)
		assert.Equal(t, 7, move.Cell)
	})

	t.Run("Fails on a full board", func(t *testing.T) {
		game := entity.NewGame("g1", entity.WithBotType)
		game.Board = entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerO, entity.PlayerX, entity.PlayerO,
			entity.PlayerO, entity.PlayerX, entity.PlayerO,
		}

		_, err := NewBotService().ChooseMove(game)

		assert.ErrorIs(t, err, ErrNoAvailableMoves)
	})
}
