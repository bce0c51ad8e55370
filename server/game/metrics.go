package game

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	gamesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_games_created_total",
			Help: "Total games created, by game type",
		},
		[]string{"game_type"},
	)
	movesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_moves_applied_total",
			Help: "Total moves applied to games, by game type",
		},
		[]string{"game_type"},
	)
)

func init() {
	prometheus.MustRegister(gamesCreated)
	prometheus.MustRegister(movesApplied)
}
