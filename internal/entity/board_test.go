package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoard_String(t *testing.T) {
	// Given: a board with a few marks
	board := Board{
		PlayerX, EmptyCell, PlayerO,
		EmptyCell, PlayerX, EmptyCell,
		EmptyCell, EmptyCell, PlayerO,
	}

	// When: rendering it
	rendered := board.String()

	// Then: the grid matches row-major order
	expected := "X|.|O\n" +
		"-+-+-\n" +
		".|X|.\n" +
		"-+-+-\n" +
		".|.|O\n"
	assert.Equal(t, expected, rendered)
}

func TestBoard_EmptyCount(t *testing.T) {
	assert.Equal(t, 9, Board{}.EmptyCount())
	assert.Equal(t, 7, Board{PlayerX, PlayerO}.EmptyCount())
}

func TestMark_Opponent(t *testing.T) {
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
	assert.False(t, EmptyCell.IsPlayer())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "Winner: X", Victory(PlayerX).String())
	assert.Equal(t, "Draw!", Draw().String())
	assert.Equal(t, "", Ongoing().String())

	assert.True(t, Victory(PlayerO).IsOver())
	assert.True(t, Draw().IsOver())
	assert.False(t, Ongoing().IsOver())
}
