package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Transport records every HTTP attempt made by the client, retries included.
// A nil *Transport records nothing.
type Transport struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewTransport registers the transport collectors on reg.
func NewTransport(reg prometheus.Registerer) (*Transport, error) {
	t := &Transport{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "attempts_total",
			Help:      "HTTP attempts by method and status (\"error\" for transport failures).",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "attempt_duration_seconds",
			Help:      "HTTP attempt duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
	}
	if err := RegisterOrReuse(reg, &t.attempts); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &t.duration); err != nil {
		return nil, err
	}
	return t, nil
}

// ObserveAttempt records one attempt. status is 0 for a transport failure.
func (t *Transport) ObserveAttempt(method string, status int, d time.Duration) {
	if t == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	t.attempts.WithLabelValues(method, label).Inc()
	t.duration.WithLabelValues(method).Observe(d.Seconds())
}
