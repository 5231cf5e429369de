package repository

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedGame(id string, outcome entity.Outcome) *entity.Game {
	game := entity.NewGame(id, entity.PrivateType)
	game.Board = entity.Board{
		entity.PlayerX, entity.PlayerX, entity.PlayerX,
		entity.PlayerO, entity.PlayerO,
	}
	game.Moves = []entity.Move{
		{Cell: 0, Player: entity.PlayerX},
		{Cell: 3, Player: entity.PlayerO},
		{Cell: 1, Player: entity.PlayerX},
		{Cell: 4, Player: entity.PlayerO},
		{Cell: 2, Player: entity.PlayerX},
	}
	game.Players = []*entity.Player{
		{ID: "alice", Mark: entity.PlayerX},
		{ID: "bob", Mark: entity.PlayerO},
	}
	game.Finish(outcome)

	return game
}

func TestHistoryRepository_Save(t *testing.T) {
	t.Run("Archives a finished game", func(t *testing.T) {
		ctx, st := suite.NewPostgres(t)
		require.NoError(t, Init(ctx, st.DB))

		historyRepo := NewHistoryRepository(st.DB)

		// Given: a game X has won
		game := finishedGame("g1", entity.Victory(entity.PlayerX))

		// When: it is archived twice
		require.NoError(t, historyRepo.Save(ctx, game))
		require.NoError(t, historyRepo.Save(ctx, game))

		// Then: both players see exactly one record
		for _, playerID := range []string{"alice", "bob"} {
			games, err := historyRepo.ListByPlayer(ctx, playerID, 10)
			require.NoError(t, err)
			require.Len(t, games, 1)

			archived := games[0]
			assert.Equal(t, "g1", archived.ID)
			assert.Equal(t, entity.Victory(entity.PlayerX), archived.Outcome)
			assert.Equal(t, game.Board, archived.Board)
			assert.Equal(t, game.Moves, archived.Moves)
			assert.True(t, archived.IsFinished())
		}
	})

	t.Run("Rejects a game still in play", func(t *testing.T) {
		ctx, st := suite.NewPostgres(t)
		require.NoError(t, Init(ctx, st.DB))

		historyRepo := NewHistoryRepository(st.DB)

		// Given: a game that is still being played
		game := entity.NewGame("g2", entity.PrivateType)
		game.Start()

		// When: archiving it
		err := historyRepo.Save(ctx, game)

		// Then: ErrGameNotFinished is returned
		require.ErrorIs(t, err, ErrGameNotFinished)
	})
}

func TestHistoryRepository_ListByPlayer(t *testing.T) {
	ctx, st := suite.NewPostgres(t)
	require.NoError(t, Init(ctx, st.DB))

	historyRepo := NewHistoryRepository(st.DB)

	// Given: three archived games for alice
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, historyRepo.Save(ctx, finishedGame(id, entity.Draw())))
	}

	// When: listing with a limit of two
	games, err := historyRepo.ListByPlayer(ctx, "alice", 2)

	// Then: the two newest games are returned
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "c", games[0].ID)
	assert.Equal(t, "b", games[1].ID)

	// And: unknown players have no history
	games, err = historyRepo.ListByPlayer(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, games)
}
