package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the daemon-mode counters.
type Registry struct {
	reg *prometheus.Registry

	Extractions        prometheus.Counter
	ExtractionFailures prometheus.Counter
	TriggersDropped    prometheus.Counter
	Commits            prometheus.Counter
	CommitFailures     prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	extractions := prometheus.NewCounter(prometheus.CounterOpts{Name: "textcal_extractions_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "textcal_extraction_failures_total"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "textcal_triggers_dropped_total"})
	commits := prometheus.NewCounter(prometheus.CounterOpts{Name: "textcal_commits_total"})
	commitFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "textcal_commit_failures_total"})

	r.MustRegister(extractions, failures, dropped, commits, commitFailures)
	return &Registry{
		reg:                r,
		Extractions:        extractions,
		ExtractionFailures: failures,
		TriggersDropped:    dropped,
		Commits:            commits,
		CommitFailures:     commitFailures,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
