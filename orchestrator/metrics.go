package orchestrator

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics reports pipeline activity to Prometheus.
type Metrics struct {
	meetings      prometheus.Counter
	profiles      prometheus.Counter
	matches       prometheus.Counter
	registrations prometheus.Counter
	runDuration   prometheus.Histogram
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics is registered with the global Prometheus registry once.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the pipeline collectors with reg, reusing any that
// are already registered. Other registration errors panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "speakerai",
			Subsystem: "pipeline",
			Name:      name,
			Help:      help,
		})
		return mustRegister(reg, c).(prometheus.Counter)
	}
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "speakerai",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Wall time spent processing one meeting recording.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	return &Metrics{
		meetings:      counter("meetings_processed_total", "Meetings processed end to end."),
		profiles:      counter("profiles_built_total", "Speaker profiles built."),
		matches:       counter("matches_total", "Profiles matched to a stored speaker."),
		registrations: counter("registrations_total", "Speakers added to or updated in the store."),
		runDuration:   mustRegister(reg, runDuration).(prometheus.Histogram),
	}
}

func mustRegister(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector
		}
		panic(err)
	}
	return c
}

func (m *Metrics) incMeetings() {
	if m == nil {
		return
	}
	m.meetings.Inc()
}

func (m *Metrics) incProfiles() {
	if m == nil {
		return
	}
	m.profiles.Inc()
}

func (m *Metrics) incMatches() {
	if m == nil {
		return
	}
	m.matches.Inc()
}

func (m *Metrics) incRegistrations() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

func (m *Metrics) observeRun(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}
