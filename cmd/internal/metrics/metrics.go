// Package metrics exposes globchat's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles the process-wide collectors. A nil *Set is a valid no-op
// receiver so subsystems can run without instrumentation in tests.
type Set struct {
	reg *prometheus.Registry

	wsOpen        prometheus.Gauge
	authSuccess   prometheus.Counter
	authFailure   prometheus.Counter
	registrations prometheus.Counter
	idsIssued     prometheus.Counter
}

// NewSet builds a registry with go/process collectors plus globchat's own.
// presenceLen, when non-nil, is sampled as a gauge of present identities.
func NewSet(presenceLen func() int) *Set {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Set{
		reg: reg,
		wsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "globchat_ws_open_connections",
			Help: "Currently open realtime connections.",
		}),
		authSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "globchat_auth_success_total",
			Help: "Successful logins.",
		}),
		authFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "globchat_auth_failure_total",
			Help: "Failed authentication attempts (login and gate).",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "globchat_registrations_total",
			Help: "Successful user registrations.",
		}),
		idsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "globchat_ids_issued_total",
			Help: "Snowflake IDs issued.",
		}),
	}

	reg.MustRegister(s.wsOpen, s.authSuccess, s.authFailure, s.registrations, s.idsIssued)

	if presenceLen != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "globchat_presence_identities",
			Help: "Identities currently present on a realtime connection or logged in.",
		}, func() float64 { return float64(presenceLen()) }))
	}

	return s
}

// Handler serves the registry in Prometheus text format.
func (s *Set) Handler() http.Handler {
	if s == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})
}

func (s *Set) ConnOpened() {
	if s != nil {
		s.wsOpen.Inc()
	}
}

func (s *Set) ConnClosed() {
	if s != nil {
		s.wsOpen.Dec()
	}
}

func (s *Set) AuthSuccess() {
	if s != nil {
		s.authSuccess.Inc()
	}
}

func (s *Set) AuthFailure() {
	if s != nil {
		s.authFailure.Inc()
	}
}

func (s *Set) Registered() {
	if s != nil {
		s.registrations.Inc()
	}
}

func (s *Set) IDIssued() {
	if s != nil {
		s.idsIssued.Inc()
	}
}
