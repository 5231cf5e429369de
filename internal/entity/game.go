package entity

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "gameover"
)

const (
	PrivateType = "private"
	WithBotType = "bot"
	LocalType   = "local"
)

var ErrUnknownPhase = errors.New("unknown game phase")

type Game struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Phase         Phase     `json:"phase"`
	Board         Board     `json:"board"`
	CurrentPlayer Mark      `json:"current_player"`
	Turn          int       `json:"turn"`
	Moves         []Move    `json:"moves"`
	Outcome       Outcome   `json:"outcome"`
	Players       []*Player `json:"players,omitempty"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:            id,
		Type:          gameType,
		Phase:         PhaseSetup,
		CurrentPlayer: PlayerX,
		Turn:          1,
		Moves:         []Move{},
		Outcome:       Ongoing(),
	}
}

func IsKnownType(gameType string) bool {
	switch gameType {
	case PrivateType, WithBotType, LocalType:
		return true
	default:
		return false
	}
}

func (that *Game) IsFinished() bool {
	return that.Phase == PhaseGameOver
}

func (that *Game) IsPlaying() bool {
	return that.Phase == PhasePlaying
}

func (that *Game) IsWaiting() bool {
	return that.Phase == PhaseSetup
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

func (that *Game) IsLocal() bool {
	return that.Type == LocalType
}

// ConfirmPlaying reports why no move may be made in the current phase.
func (that *Game) ConfirmPlaying() error {
	switch that.Phase {
	case PhaseSetup:
		return apperror.ErrGameIsNotStarted
	case PhaseGameOver:
		return apperror.ErrGameFinished
	case PhasePlaying:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPhase, that.Phase)
	}
}

// Start moves the game from setup into play.
func (that *Game) Start() {
	if that.Phase == PhaseSetup {
		that.Phase = PhasePlaying
	}
}

// Finish records a terminal outcome and closes the game.
func (that *Game) Finish(outcome Outcome) {
	that.Outcome = outcome
	that.Phase = PhaseGameOver
	that.CurrentPlayer = EmptyCell
}

// PassTurn hands the move to the opponent; one move per turn.
func (that *Game) PassTurn() {
	that.CurrentPlayer = that.CurrentPlayer.Opponent()
	that.Turn++
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

func (that *Game) PlayerByMark(mark Mark) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}
	return nil
}

func (that *Game) Bot() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}
	return nil
}

// HumanPlayers returns every seated player that is not a bot.
func (that *Game) HumanPlayers() []*Player {
	humans := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		if !player.IsBot() {
			humans = append(humans, player)
		}
	}
	return humans
}

func (that *Game) GetRandomMarks() (Mark, Mark) {
	if rand.IntN(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}
