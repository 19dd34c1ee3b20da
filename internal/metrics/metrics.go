package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Correction outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Answer outcomes.
const (
	AnswerScored   = "scored"
	AnswerDegraded = "degraded"
	AnswerFailed   = "failed"
	AnswerSkipped  = "skipped"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	Corrections        *prometheus.CounterVec
	CorrectionDuration prometheus.Histogram
	AnswersScored      *prometheus.CounterVec
	AIAttempts         *prometheus.CounterVec
	RequestCounter     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,
		Corrections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corrections_total",
				Help: "Total number of correction passes by outcome",
			},
			[]string{"outcome"},
		),
		CorrectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "correction_duration_seconds",
				Help:    "Duration of a full correction pass",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180},
			},
		),
		AnswersScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "answers_scored_total",
				Help: "Answers handled during correction by scorer and outcome",
			},
			[]string{"scorer", "outcome"},
		),
		AIAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_attempts_total",
				Help: "Calls made to the text-generation provider",
			},
			[]string{"provider", "outcome"},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
	}

	reg.MustRegister(
		m.Corrections,
		m.CorrectionDuration,
		m.AnswersScored,
		m.AIAttempts,
		m.RequestCounter,
		m.RequestDuration,
	)
	return m
}

func (m *Metrics) ObserveCorrection(outcome string, d time.Duration) {
	m.Corrections.WithLabelValues(outcome).Inc()
	m.CorrectionDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveAnswer(scorer, outcome string) {
	m.AnswersScored.WithLabelValues(scorer, outcome).Inc()
}

func (m *Metrics) ObserveAIAttempt(provider string, ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	m.AIAttempts.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
