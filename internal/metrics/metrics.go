package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ContentCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "content_created_total",
		Help: "Content records created, by kind and initial state",
	}, []string{"kind", "state"})

	ContentPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "content_published_total",
		Help: "Draft to published transitions",
	}, []string{"kind"})

	CommentsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comments_created_total",
		Help: "Comments created, split by initial approval",
	}, []string{"approved"})

	Likes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "likes_total",
		Help: "Like increments by target",
	}, []string{"target"})

	StatisticsRecomputeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statistics_recompute_failures_total",
		Help: "Best-effort statistics recomputes that failed",
	})
)

// MustRegister registers the collectors.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ContentCreated,
		ContentPublished,
		CommentsCreated,
		Likes,
		StatisticsRecomputeFailures,
	)
}

// ObserveContentCreated records a new record of kind in its initial state.
func ObserveContentCreated(kind string, published bool) {
	state := "draft"
	if published {
		state = "published"
	}
	ContentCreated.WithLabelValues(kind, state).Inc()
}

func ObserveCommentCreated(approved bool) {
	CommentsCreated.WithLabelValues(strconv.FormatBool(approved)).Inc()
}
