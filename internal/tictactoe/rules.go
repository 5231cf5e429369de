package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var (
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrCellOutOfRange = errors.New("cell index out of range")
)

// winCombos lists the rows, columns and diagonals of the board.
var winCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Lines returns the eight winning triples.
func Lines() [][3]int {
	lines := make([][3]int, len(winCombos))
	copy(lines, winCombos[:])
	return lines
}

// ValidateMove checks that cell may be marked on board. It never changes the board;
// every failure matches apperror.ErrInvalidMove.
func ValidateMove(board entity.Board, cell int) error {
	if cell < 0 || cell >= len(board) {
		return fmt.Errorf("%w: %w: cell %d", apperror.ErrInvalidMove, ErrCellOutOfRange, cell)
	}

	if !board.IsEmpty(cell) {
		return fmt.Errorf("%w: %w: cell %d", apperror.ErrInvalidMove, ErrCellOccupied, cell)
	}

	return nil
}

// EvaluateOutcome classifies board after currentPlayer has moved.
//
// Two complete lines at once cannot happen in sequential play. If a board holds them
// anyway, a line of currentPlayer wins, otherwise the first one in winCombos order.
func EvaluateOutcome(board entity.Board, currentPlayer entity.Mark) entity.Outcome {
	winner := entity.EmptyCell

	for _, combo := range winCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a == entity.EmptyCell || a != b || b != c {
			continue
		}

		if a == currentPlayer {
			return entity.Victory(a)
		}

		if winner == entity.EmptyCell {
			winner = a
		}
	}

	if winner != entity.EmptyCell {
		return entity.Victory(winner)
	}

	// the game will continue until all the squares are full
	if board.EmptyCount() > 0 {
		return entity.Ongoing()
	}

	return entity.Draw()
}

// EnumerateLegalMoves returns one move per empty cell in increasing index order,
// attributed to player.
func EnumerateLegalMoves(board entity.Board, player entity.Mark) []entity.Move {
	moves := make([]entity.Move, 0, board.EmptyCount())

	for cell := range board {
		if board.IsEmpty(cell) {
			moves = append(moves, entity.Move{Cell: cell, Player: player})
		}
	}

	return moves
}
