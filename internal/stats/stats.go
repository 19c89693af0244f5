// Package stats exposes neg3ctl's frame/CRC/slot counters over the
// out-of-scope HTTP statistics endpoint spec.md §1 names as an external
// collaborator, following the Prometheus counter/gauge pattern
// metadata/acl/metrics.go uses in the retrieval pack's marmos91-dittofs repo.
package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks the counters neg3ctl exposes over /metrics. Methods handle
// a nil receiver gracefully, so a nil *Metrics is a zero-overhead no-op.
type Metrics struct {
	FramesDecoded   *prometheus.CounterVec
	FrameCRCErrors  prometheus.Counter
	SlotsActive     prometheus.Gauge
	SlotTransitions *prometheus.CounterVec
	HeartbeatTicks  prometheus.Counter
}

// NewMetrics builds and registers neg3ctl's counters against registerer
// (prometheus.DefaultRegisterer if nil).
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		FramesDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neg3ctl_frames_decoded_total",
				Help: "USI frames successfully decoded off the serial port, by protocol",
			},
			[]string{"protocol"},
		),
		FrameCRCErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "neg3ctl_frame_crc_errors_total",
				Help: "USI frames discarded for failing CRC or framing validation",
			},
		),
		SlotsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "neg3ctl_authenticator_slots_active",
				Help: "Bootstrap authenticator slots currently mid-handshake",
			},
		),
		SlotTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neg3ctl_authenticator_slot_transitions_total",
				Help: "Bootstrap authenticator slot state transitions, by resulting state",
			},
			[]string{"state"},
		),
		HeartbeatTicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "neg3ctl_heartbeat_ticks_total",
				Help: "Heartbeat task ticks processed",
			},
		),
	}

	registerer.MustRegister(
		m.FramesDecoded,
		m.FrameCRCErrors,
		m.SlotsActive,
		m.SlotTransitions,
		m.HeartbeatTicks,
	)
	return m
}

// ObserveFrame records one successfully decoded frame for protocol.
func (m *Metrics) ObserveFrame(protocol string) {
	if m == nil {
		return
	}
	m.FramesDecoded.WithLabelValues(protocol).Inc()
}

// ObserveCRCError records one frame discarded for a CRC/framing failure.
func (m *Metrics) ObserveCRCError() {
	if m == nil {
		return
	}
	m.FrameCRCErrors.Inc()
}

// SetSlotsActive reports the current count of mid-handshake authenticator
// slots.
func (m *Metrics) SetSlotsActive(n int) {
	if m == nil {
		return
	}
	m.SlotsActive.Set(float64(n))
}

// ObserveSlotTransition records an authenticator slot entering state.
func (m *Metrics) ObserveSlotTransition(state string) {
	if m == nil {
		return
	}
	m.SlotTransitions.WithLabelValues(state).Inc()
}

// ObserveHeartbeat records one heartbeat tick.
func (m *Metrics) ObserveHeartbeat() {
	if m == nil {
		return
	}
	m.HeartbeatTicks.Inc()
}

// Server runs the /metrics HTTP endpoint on its own goroutine.
type Server struct {
	addr   string
	srv    *http.Server
	log    *log.Logger
}

// NewServer builds a stats HTTP server bound to addr (e.g. ":9100"),
// serving gatherer's metrics (prometheus.DefaultGatherer if nil) at
// /metrics.
func NewServer(addr string, gatherer prometheus.Gatherer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
		log:  logger,
	}
}

// Start launches the HTTP listener on its own goroutine. It stops and
// closes the listener when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.log.Info("stats: listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("stats: listener failed", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("stats: shutdown error", "err", err)
		}
	}()
}
