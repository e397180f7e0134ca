// Package metrics exposes quiz counters to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements app.Metrics on top of Prometheus collectors.
type Metrics struct {
	quizzesIssued   prometheus.Counter
	questionsServed prometheus.Counter
	submissions     *prometheus.CounterVec
	scores          prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quizzesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trivia",
			Name:      "quizzes_issued_total",
			Help:      "Quizzes drawn from the question bank.",
		}),
		questionsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trivia",
			Name:      "questions_served_total",
			Help:      "Questions sent to players across all quizzes.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia",
			Name:      "submissions_total",
			Help:      "Graded submissions, by whether a session was recorded.",
		}, []string{"saved"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trivia",
			Name:      "submission_score",
			Help:      "Distribution of submission scores (0-100).",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}
	reg.MustRegister(m.quizzesIssued, m.questionsServed, m.submissions, m.scores)
	return m
}

func (m *Metrics) QuizIssued(questions int) {
	m.quizzesIssued.Inc()
	m.questionsServed.Add(float64(questions))
}

func (m *Metrics) SubmissionGraded(score int, saved bool) {
	m.submissions.WithLabelValues(strconv.FormatBool(saved)).Inc()
	m.scores.Observe(float64(score))
}
