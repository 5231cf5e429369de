package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

func TestMetrics(t *testing.T) {
	// Given: metrics bound to a private registry
	m := New("test", prometheus.NewRegistry())

	// When: recording a short game
	m.GameCreated(entity.PrivateType)
	m.MoveApplied()
	m.MoveApplied()
	m.MoveRejected(fmt.Errorf("wrapped: %w", apperror.ErrInvalidMove))
	m.MoveRejected(apperror.ErrNotYourTurn)
	m.GameFinished(entity.Victory(entity.PlayerX))
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()

	// Then: every series reflects the calls
	assert.InDelta(t, 1, testutil.ToFloat64(m.GamesCreated.WithLabelValues(entity.PrivateType)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.MovesApplied), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MovesRejected.WithLabelValues("invalid_move")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MovesRejected.WithLabelValues("not_your_turn")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.GamesFinished.WithLabelValues("victory", "X")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ActiveConnections), 0)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.GameCreated(entity.LocalType)
		m.MoveApplied()
		m.MoveRejected(apperror.ErrGameFinished)
		m.GameFinished(entity.Draw())
		m.ConnectionOpened()
		m.ConnectionClosed()
	})
}
