package entity

import "strings"

// Mark identifies whose symbol occupies a cell.
type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

// BoardSize is the number of cells on a 3x3 board.
const BoardSize = 9

// Board holds the cells in row-major order.
type Board [BoardSize]Mark

// Opponent returns the mark that moves after m.
func (m Mark) Opponent() Mark {
	if m == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (m Mark) IsPlayer() bool {
	return m == PlayerX || m == PlayerO
}

func (that Board) IsEmpty(cell int) bool {
	return that[cell] == EmptyCell
}

// EmptyCount returns how many cells are still free.
func (that Board) EmptyCount() int {
	count := 0
	for _, cell := range that {
		if cell == EmptyCell {
			count++
		}
	}
	return count
}

// String renders the board as a 3x3 grid, empty cells shown as dots.
func (that Board) String() string {
	var sb strings.Builder

	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("-+-+-\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteByte('|')
			}
			cell := that[3*row+col]
			if cell == EmptyCell {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(cell))
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Move is a proposed mark on a single cell.
type Move struct {
	Cell   int  `json:"cell"`
	Player Mark `json:"player"`
}

type OutcomeStatus string

const (
	OutcomeOngoing OutcomeStatus = "ongoing"
	OutcomeVictory OutcomeStatus = "victory"
	OutcomeDraw    OutcomeStatus = "draw"
)

// Outcome classifies a board. Winner is set only for a victory.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Winner Mark          `json:"winner,omitempty"`
}

func Ongoing() Outcome {
	return Outcome{Status: OutcomeOngoing}
}

func Victory(winner Mark) Outcome {
	return Outcome{Status: OutcomeVictory, Winner: winner}
}

func Draw() Outcome {
	return Outcome{Status: OutcomeDraw}
}

func (that Outcome) IsOver() bool {
	return that.Status == OutcomeVictory || that.Status == OutcomeDraw
}

// String returns the gameover message shown to players, or "" while the game goes on.
func (that Outcome) String() string {
	switch that.Status {
	case OutcomeVictory:
		return "Winner: " + string(that.Winner)
	case OutcomeDraw:
		return "Draw!"
	default:
		return ""
	}
}
