// Package metrics exports intake and dispatch instrumentation to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "newsletter"

// Recorder holds the collectors for the subscription service. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	intakeTotal      *prometheus.CounterVec
	intakeDuration   prometheus.Histogram
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
}

// NewRecorder registers the collectors with reg, or with the default
// registerer when reg is nil. Collectors already registered under the same
// name are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		intakeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_total",
			Help:      "Subscription requests by terminal outcome.",
		}, []string{"outcome"}),
		intakeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "intake_duration_seconds",
			Help:      "Latency of subscription intake, validation through persistence.",
			Buckets:   prometheus.DefBuckets,
		}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Email dispatch attempts by outcome.",
		}, []string{"outcome"}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Latency of a single email provider request.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	var err error
	if r.intakeTotal, err = register(reg, r.intakeTotal); err != nil {
		return nil, fmt.Errorf("register intake counter: %w", err)
	}
	if r.intakeDuration, err = register(reg, r.intakeDuration); err != nil {
		return nil, fmt.Errorf("register intake histogram: %w", err)
	}
	if r.dispatchTotal, err = register(reg, r.dispatchTotal); err != nil {
		return nil, fmt.Errorf("register dispatch counter: %w", err)
	}
	if r.dispatchDuration, err = register(reg, r.dispatchDuration); err != nil {
		return nil, fmt.Errorf("register dispatch histogram: %w", err)
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// ObserveIntake records one finished intake with its outcome label.
func (r *Recorder) ObserveIntake(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.intakeTotal.WithLabelValues(outcome).Inc()
	r.intakeDuration.Observe(d.Seconds())
}

// ObserveDispatch satisfies emailclient.Observer.
func (r *Recorder) ObserveDispatch(d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.dispatchTotal.WithLabelValues(outcome).Inc()
	r.dispatchDuration.Observe(d.Seconds())
}
