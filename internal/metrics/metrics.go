package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	GamesCreated      *prometheus.CounterVec
	GamesFinished     *prometheus.CounterVec
	MovesApplied      prometheus.Counter
	MovesRejected     *prometheus.CounterVec
	ActiveConnections prometheus.Gauge
}

func New(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		GamesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Number of games created, by type",
		}, []string{"type"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Number of finished games, by outcome",
		}, []string{"outcome", "winner"}),
		MovesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_applied_total",
			Help:      "Number of moves applied to a board",
		}),
		MovesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_rejected_total",
			Help:      "Number of rejected moves, by reason",
		}, []string{"reason"}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Number of open websocket connections",
		}),
	}

	registerer.MustRegister(
		m.GamesCreated,
		m.GamesFinished,
		m.MovesApplied,
		m.MovesRejected,
		m.ActiveConnections,
	)

	return m
}

func (m *Metrics) GameCreated(gameType string) {
	if m == nil {
		return
	}
	m.GamesCreated.WithLabelValues(gameType).Inc()
}

func (m *Metrics) GameFinished(outcome entity.Outcome) {
	if m == nil {
		return
	}
	m.GamesFinished.WithLabelValues(string(outcome.Status), string(outcome.Winner)).Inc()
}

func (m *Metrics) MoveApplied() {
	if m == nil {
		return
	}
	m.MovesApplied.Inc()
}

func (m *Metrics) MoveRejected(err error) {
	if m == nil {
		return
	}
	m.MovesRejected.WithLabelValues(rejectReason(err)).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.ActiveConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ActiveConnections.Dec()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidMove):
		return "invalid_move"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, apperror.ErrGameFinished):
		return "game_finished"
	case errors.Is(err, apperror.ErrGameIsNotStarted):
		return "game_not_started"
	default:
		return "other"
	}
}
