package main

import (
	"net/http"
	"runtime"
	"time"

	"pqgate/internal/constants"
	"pqgate/internal/errors"
	"pqgate/internal/metrics"
	"pqgate/internal/models"
	"pqgate/internal/tracing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

// handleMetrics returns a point-in-time snapshot: current resource usage, the
// configured budget, per-operation timing aggregates from the history store,
// and the in-memory registry.
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestInfo := tracing.GetRequestInfo(r.Context())

		s.logger.WithFields(logrus.Fields{
			"request_id": requestInfo.RequestID,
			"trace_id":   requestInfo.TraceID,
			"endpoint":   "/api/metrics",
		}).Debug("Serving metrics endpoint")

		stats, err := s.db.PerformanceStats(r.Context())
		if err != nil {
			s.writeError(w, r, errors.NewDatabaseError("stats query", err))
			return
		}

		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		s.writeJSON(w, r, http.StatusOK, models.MetricsResponse{
			Success:    true,
			Usage:      s.monitor.Sample(),
			Budget:     s.monitor.Budget(),
			SystemInfo: s.systemInfo(),
			Stats:      stats,
			Registry:   metrics.GetAllMetrics(),
		})
	}
}

// handleMetricsLive streams resource readings over a websocket until the
// client disconnects.
func (s *Server) handleMetricsLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			s.logger.Warnf("Failed to accept websocket: %v", err)
			return
		}
		defer conn.CloseNow()

		// CloseRead fails the context when the client goes away.
		ctx := conn.CloseRead(r.Context())

		ticker := time.NewTicker(constants.DefaultLiveSampleIntervalMs * time.Millisecond)
		defer ticker.Stop()

		s.logger.Debug("Live metrics stream opened")
		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("Live metrics stream closed")
				return
			case <-ticker.C:
				reading := struct {
					Usage     models.ResourceUsage `json:"usage"`
					Budget    models.BudgetConfig  `json:"budget"`
					Timestamp int64                `json:"timestamp"`
				}{
					Usage:     s.monitor.Sample(),
					Budget:    s.monitor.Budget(),
					Timestamp: time.Now().Unix(),
				}
				if err := wsjson.Write(ctx, conn, reading); err != nil {
					return
				}
			}
		}
	}
}

func (s *Server) systemInfo() models.SystemInfo {
	return models.SystemInfo{
		Provider:     s.cfg.Crypto.Provider,
		KEMAlgorithm: s.gateway.KEMAlgorithm(),
		SIGAlgorithm: s.gateway.SIGAlgorithm(),
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		CPUCount:     runtime.NumCPU(),
	}
}
