package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	// When: a new private game is created
	game := NewGame("123", PrivateType)

	// Then: it waits in setup with an empty board and X to move
	expectedGame := &Game{
		ID:            "123",
		Type:          PrivateType,
		Phase:         PhaseSetup,
		CurrentPlayer: PlayerX,
		Turn:          1,
		Moves:         []Move{},
		Outcome:       Outcome{Status: OutcomeOngoing},
	}

	require.Equal(t, expectedGame, game)
	assert.Equal(t, BoardSize, game.Board.EmptyCount())
}

func TestGamePhaseMethods(t *testing.T) {
	t.Run("IsFinished returns true when game is over", func(t *testing.T) {
		// Given: a game in the gameover phase
		game := &Game{Phase: PhaseGameOver}

		// Then: it should report finished
		assert.True(t, game.IsFinished())
		assert.False(t, game.IsPlaying())
	})

	t.Run("IsPlaying returns true when game is playing", func(t *testing.T) {
		// Given: a game in the playing phase
		game := &Game{Phase: PhasePlaying}

		// Then: it should report playing
		assert.True(t, game.IsPlaying())
		assert.False(t, game.IsWaiting())
	})

	t.Run("IsWaiting returns true when game is in setup", func(t *testing.T) {
		// Given: a game in the setup phase
		game := &Game{Phase: PhaseSetup}

		// Then: it should report waiting
		assert.True(t, game.IsWaiting())
	})
}

func TestGame_ConfirmPlaying(t *testing.T) {
	t.Run("Returns nil when game is playing", func(t *testing.T) {
		game := &Game{Phase: PhasePlaying}

		assert.NoError(t, game.ConfirmPlaying())
	})

	t.Run("Returns ErrGameIsNotStarted when game is in setup", func(t *testing.T) {
		game := &Game{Phase: PhaseSetup}

		assert.ErrorIs(t, game.ConfirmPlaying(), apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrGameFinished when game is over", func(t *testing.T) {
		game := &Game{Phase: PhaseGameOver}

		assert.ErrorIs(t, game.ConfirmPlaying(), apperror.ErrGameFinished)
	})

	t.Run("Returns error for unknown phase", func(t *testing.T) {
		// Given: a game with a phase nobody knows about
		game := &Game{Phase: "unknown"}

		// When: checking if moves are allowed
		err := game.ConfirmPlaying()

		// Then: it should return ErrUnknownPhase
		require.ErrorIs(t, err, ErrUnknownPhase)
		assert.Contains(t, err.Error(), "unknown")
	})
}

func TestGame_TurnFlow(t *testing.T) {
	t.Run("Start leaves setup only once", func(t *testing.T) {
		// Given: a finished game
		game := NewGame("1", PrivateType)
		game.Finish(Draw())

		// When: starting it again
		game.Start()

		// Then: the phase stays gameover
		assert.Equal(t, PhaseGameOver, game.Phase)
	})

	t.Run("PassTurn toggles the mark and counts turns", func(t *testing.T) {
		// Given: a playing game with X to move
		game := NewGame("1", PrivateType)
		game.Start()

		// When: the turn passes twice
		game.PassTurn()
		assert.Equal(t, PlayerO, game.CurrentPlayer)
		game.PassTurn()

		// Then: X moves again on turn 3
		assert.Equal(t, PlayerX, game.CurrentPlayer)
		assert.Equal(t, 3, game.Turn)
	})

	t.Run("Finish clears the current player", func(t *testing.T) {
		game := NewGame("1", PrivateType)
		game.Start()

		game.Finish(Victory(PlayerO))

		assert.True(t, game.IsFinished())
		assert.Equal(t, EmptyCell, game.CurrentPlayer)
		assert.Equal(t, Victory(PlayerO), game.Outcome)
	})
}

func TestGame_Players(t *testing.T) {
	// Given: a bot game with a human and a bot seat
	human := &Player{ID: "p1", Mark: PlayerX, GameID: "g1"}
	bot := NewBotPlayer("g1")
	bot.Mark = PlayerO
	game := &Game{ID: "g1", Players: []*Player{human, bot}}

	// Then: lookups resolve the right seats
	assert.Same(t, human, game.PlayerByID("p1"))
	assert.Same(t, bot, game.PlayerByMark(PlayerO))
	assert.Same(t, bot, game.Bot())
	assert.Equal(t, []*Player{human}, game.HumanPlayers())
	assert.Nil(t, game.PlayerByID("missing"))
}

func TestGame_GetRandomMarks(t *testing.T) {
	game := &Game{}

	for range 20 {
		first, second := game.GetRandomMarks()

		assert.NotEqual(t, first, second)
		assert.True(t, first.IsPlayer())
		assert.True(t, second.IsPlayer())
	}
}
