// Package main is the entry point for lending-monitor, the live-refreshing
// analytics service for the Bitfinex funding strategy: it polls the upstream
// engine's cached state, derives comparison metrics, and exposes the latest
// derived state over HTTP.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourorg/lending-monitor/internal/config"
	"github.com/yourorg/lending-monitor/internal/fetch"
	"github.com/yourorg/lending-monitor/internal/model"
	"github.com/yourorg/lending-monitor/internal/otel"
	"github.com/yourorg/lending-monitor/internal/scheduler"
	"github.com/yourorg/lending-monitor/internal/security"
	"github.com/yourorg/lending-monitor/internal/timefmt"
)

// startTime records when the service was initialized for uptime reporting
var startTime = time.Now()

// Server wires the scheduler to the HTTP surface.
type Server struct {
	// Configuration for the server
	cfg config.Config

	// Refresh scheduler owning the latest derived state
	sched *scheduler.Scheduler

	// Metrics registry, nil when metrics are disabled
	metrics *serverMetrics

	// Rate limiter for manual refresh requests
	rateLimit *rate.Limiter

	// Optional published-state signer
	signer *security.StateSigner

	// HTTP server instance
	server *http.Server
}

// serverMetrics holds Prometheus metrics for the server
type serverMetrics struct {
	cycleCounter   *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	refreshCounter *prometheus.CounterVec
	resourceErrors *prometheus.CounterVec
	totalAssets    prometheus.Gauge
	trueAPY        prometheus.Gauge
	spoofFlag      prometheus.Gauge
}

// registerMetrics sets up Prometheus metrics collection
func registerMetrics() *serverMetrics {
	m := &serverMetrics{
		cycleCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_refresh_cycles_total",
				Help: "Completed refresh cycles by trigger",
			},
			[]string{"trigger"},
		),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lending_refresh_cycle_seconds",
			Help:    "Refresh cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		refreshCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_manual_refresh_requests_total",
				Help: "Manual refresh requests by outcome",
			},
			[]string{"outcome"},
		),
		resourceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_resource_errors_total",
				Help: "Failed upstream resource reads by resource",
			},
			[]string{"resource"},
		),
		totalAssets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lending_total_assets",
			Help: "Latest combined net asset value",
		}),
		trueAPY: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lending_true_apy",
			Help: "Latest realized equivalent annual yield",
		}),
		spoofFlag: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lending_spoof_flag",
			Help: "Whether the quoted market rate is flagged as manipulated (0 or 1)",
		}),
	}

	prometheus.MustRegister(
		m.cycleCounter,
		m.cycleDuration,
		m.refreshCounter,
		m.resourceErrors,
		m.totalAssets,
		m.trueAPY,
		m.spoofFlag,
	)

	return m
}

// main is the entry point for the application
func main() {
	setupLogging()

	cfg := config.Load()

	shutdownTracer := otel.InitTracer(cfg.OtelEndpoint)
	defer shutdownTracer()

	server := NewServer(cfg)
	server.Start()
}

// NewServer creates a server instance with the fetcher and scheduler wired up.
func NewServer(cfg config.Config) *Server {
	var metrics *serverMetrics
	if cfg.EnableMetrics {
		metrics = registerMetrics()
	}

	fetcher := fetch.NewFetcher(fetch.NewClient(cfg), cfg.RequestTimeout)
	if metrics != nil {
		fetcher = fetcher.WithErrorCallback(func(resource string) {
			metrics.resourceErrors.WithLabelValues(resource).Inc()
		})
	}

	norm := timefmt.New(cfg.DisplayTimezone)
	sched := scheduler.New(fetcher, cfg.RefreshCadence, cfg.ProjectionYears, norm)
	if metrics != nil {
		sched = sched.WithPublishCallback(func(state model.DerivedState, trigger string, took time.Duration) {
			metrics.cycleCounter.WithLabelValues(trigger).Inc()
			metrics.cycleDuration.Observe(took.Seconds())
			metrics.totalAssets.Set(state.Overview.Total)
			metrics.trueAPY.Set(state.Performance.TrueAPY)
			if state.Spoof.Spoofed {
				metrics.spoofFlag.Set(1)
			} else {
				metrics.spoofFlag.Set(0)
			}
		})
	}

	var signer *security.StateSigner
	if cfg.EnableSigning {
		var err error
		signer, err = security.NewStateSigner()
		if err != nil {
			logrus.Warnf("State signing disabled: %v", err)
		}
	}

	if !cfg.Configured() {
		logrus.Warn("Store credentials absent: service reports not-configured and performs no fetches")
	}

	logrus.WithFields(logrus.Fields{
		"port":             cfg.Port,
		"cadence_s":        cfg.RefreshCadence,
		"projection_years": cfg.ProjectionYears,
		"display_tz":       cfg.DisplayTimezone,
		"metrics":          cfg.EnableMetrics,
		"signing":          signer != nil,
		"configured":       cfg.Configured(),
	}).Info("Server initialized")

	return &Server{
		cfg:       cfg,
		sched:     sched,
		metrics:   metrics,
		rateLimit: rate.NewLimiter(rate.Limit(cfg.RefreshRPS), cfg.RefreshBurst),
		signer:    signer,
	}
}

// Start begins the scheduler and HTTP server and sets up graceful shutdown.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.sched.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)     // Latest derived state
	mux.HandleFunc("/refresh", s.handleRefresh) // Manual refresh trigger
	mux.HandleFunc("/cadence", s.handleCadence) // View/change refresh cadence
	mux.HandleFunc("/health", s.handleHealth)   // Health check endpoint
	mux.HandleFunc("/status", s.handleStatus)   // Service status endpoint
	mux.HandleFunc("/metrics", s.handleMetrics) // Prometheus metrics endpoint

	s.server = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Server starting on port %s", s.cfg.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Server shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server shutdown failed: %v", err)
	}

	logrus.Info("Server stopped")
}

// stateResponse is the outbound read-only contract: the latest published
// state plus the normalized sync time. Consumers must tolerate a nil state
// (first cycle, or permanent fetch failure).
type stateResponse struct {
	Configured     bool                `json:"configured"`
	SchedulerState string              `json:"scheduler_state"`
	LastUpdated    string              `json:"last_updated"`
	State          *model.DerivedState `json:"state,omitempty"`
}

// handleState serves the latest derived state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{
		Configured:     s.sched.Configured(),
		SchedulerState: s.sched.State().String(),
		LastUpdated:    s.sched.LastUpdatedDisplay(),
	}
	if state, ok := s.sched.Latest(); ok {
		resp.State = &state
	}

	var body interface{} = resp
	if s.signer != nil {
		signed, err := s.signer.Sign(resp)
		if err != nil {
			logrus.Warnf("Failed to sign state response: %v", err)
		} else {
			body = signed
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

// handleRefresh triggers a manual refresh cycle. A request arriving while
// a cycle is pending is dropped; either way no second concurrent fetch
// ever starts.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.rateLimit.Allow() {
		s.countRefresh("rate_limited")
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	accepted := s.sched.TriggerRefresh()
	if accepted {
		s.countRefresh("accepted")
	} else {
		s.countRefresh("coalesced")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]bool{"accepted": accepted})
}

// handleCadence allows viewing and switching the automatic refresh period.
func (s *Server) handleCadence(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		seconds, err := strconv.Atoi(r.URL.Query().Get("seconds"))
		if err != nil {
			http.Error(w, "Invalid seconds parameter", http.StatusBadRequest)
			return
		}
		if err := s.sched.SetCadence(seconds); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cadence_seconds": s.sched.Cadence(),
		"allowed":         config.Cadences,
	})
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "OK",
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus provides detailed service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":          "operational",
		"uptime":          time.Since(startTime).String(),
		"version":         version,
		"configured":      s.sched.Configured(),
		"scheduler_state": s.sched.State().String(),
		"cadence_seconds": s.sched.Cadence(),
		"last_updated":    s.sched.LastUpdatedRaw(),
	}
	if s.signer != nil {
		status["signing_public_key"] = s.signer.PublicKey()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// handleMetrics exposes Prometheus metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.Error(w, "Metrics disabled", http.StatusServiceUnavailable)
		return
	}

	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) countRefresh(outcome string) {
	if s.metrics != nil {
		s.metrics.refreshCounter.WithLabelValues(outcome).Inc()
	}
}
