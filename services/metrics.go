package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"sunsetCompanionAPI/internal/streak"
)

var (
	sunsetsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sunsets_created_total",
			Help: "Total number of sunsets logged",
		},
	)
	duplicatePosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunset_duplicate_posts_total",
			Help: "Total number of posts rejected because the day was already logged",
		},
		[]string{"source"},
	)
	streakTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_transitions_total",
			Help: "Streak updates by transition",
		},
		[]string{"transition"},
	)
	pushDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_notifications_total",
			Help: "Push notification jobs by outcome",
		},
		[]string{"result"},
	)
)

// RegisterMetrics registers the service metrics. Call this from main.go
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(sunsetsCreated, duplicatePosts, streakTransitions, pushDispatches)
}

func recordTransition(t streak.Transition) {
	streakTransitions.WithLabelValues(string(t)).Inc()
}
