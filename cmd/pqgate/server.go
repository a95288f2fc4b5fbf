package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pqgate/internal/database"
	"pqgate/internal/errors"
	"pqgate/internal/gateway"
	"pqgate/internal/middleware"
	"pqgate/internal/models"
	"pqgate/internal/monitor"
	"pqgate/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxRequestBodyBytes = 1 << 20

type Server struct {
	cfg     *models.Config
	router  *mux.Router
	logger  *logrus.Logger
	gateway *gateway.Gateway
	monitor *monitor.Monitor
	db      *database.Database
	server  *http.Server
}

func NewServer(cfg *models.Config, gw *gateway.Gateway, mon *monitor.Monitor, db *database.Database, logger *logrus.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		router:  mux.NewRouter(),
		logger:  logger,
		gateway: gw,
		monitor: mon,
		db:      db,
	}

	s.router.Use(middleware.ObservabilityMiddleware(logger))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()

	kem := api.PathPrefix("/kem").Subrouter()
	kem.HandleFunc("/keygen", s.handleKEMKeygen()).Methods(http.MethodPost)
	kem.HandleFunc("/encapsulate", s.handleKEMEncapsulate()).Methods(http.MethodPost)
	kem.HandleFunc("/decapsulate", s.handleKEMDecapsulate()).Methods(http.MethodPost)

	sig := api.PathPrefix("/sig").Subrouter()
	sig.HandleFunc("/keygen", s.handleSIGKeygen()).Methods(http.MethodPost)
	sig.HandleFunc("/sign", s.handleSIGSign()).Methods(http.MethodPost)
	sig.HandleFunc("/verify", s.handleSIGVerify()).Methods(http.MethodPost)

	api.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)
	api.HandleFunc("/metrics/live", s.handleMetricsLive()).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory()).Methods(http.MethodGet)
	api.HandleFunc("/clear", s.handleClear()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.cfg.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Warnf("Failed to write health response: %v", err)
		}
	}
}

func (s *Server) handleKEMKeygen() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, durationMs, err := s.gateway.KEMKeygen(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.saveKEMRecord(r.Context(), &models.KEMOperationRecord{
			Operation:  models.OpKEMKeygen,
			PublicKey:  result.PublicKey,
			PrivateKey: result.PrivateKey,
		})
		s.writeSuccess(w, r, result, durationMs)
	}
}

func (s *Server) handleKEMEncapsulate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.EncapsulateRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		result, durationMs, err := s.gateway.KEMEncapsulate(r.Context(), req.PublicKey)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.saveKEMRecord(r.Context(), &models.KEMOperationRecord{
			Operation:    models.OpKEMEncapsulate,
			PublicKey:    req.PublicKey,
			Ciphertext:   result.Ciphertext,
			SharedSecret: result.SharedSecret,
		})
		s.writeSuccess(w, r, result, durationMs)
	}
}

func (s *Server) handleKEMDecapsulate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.DecapsulateRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		result, durationMs, err := s.gateway.KEMDecapsulate(r.Context(), req.PrivateKey, req.Ciphertext)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.saveKEMRecord(r.Context(), &models.KEMOperationRecord{
			Operation:    models.OpKEMDecapsulate,
			Ciphertext:   req.Ciphertext,
			SharedSecret: result.SharedSecret,
		})
		s.writeSuccess(w, r, result, durationMs)
	}
}

func (s *Server) handleSIGKeygen() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, durationMs, err := s.gateway.SIGKeygen(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.saveSIGRecord(r.Context(), &models.SIGOperationRecord{
			Operation:  models.OpSIGKeygen,
			PublicKey:  result.PublicKey,
			PrivateKey: result.PrivateKey,
		})
		s.writeSuccess(w, r, result, durationMs)
	}
}

func (s *Server) handleSIGSign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SignRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		result, durationMs, err := s.gateway.SIGSign(r.Context(), req.PrivateKey, req.Message)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.saveSIGRecord(r.Context(), &models.SIGOperationRecord{
			Operation: models.OpSIGSign,
			Message:   result.Message,
			Signature: result.Signature,
		})
		s.writeSuccess(w, r, result, durationMs)
	}
}

func (s *Server) handleSIGVerify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		result, durationMs, err := s.gateway.SIGVerify(r.Context(), req.PublicKey, req.Message, req.Signature)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		valid := result.IsValid
		s.saveSIGRecord(r.Context(), &models.SIGOperationRecord{
			Operation: models.OpSIGVerify,
			PublicKey: req.PublicKey,
			Message:   req.Message,
			Signature: req.Signature,
			Valid:     &valid,
		})
		s.writeSuccess(w, r, result, durationMs)
	}
}

func (s *Server) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := s.cfg.Server.HistoryLimit

		kemOps, err := s.db.RecentKEMOperations(r.Context(), limit)
		if err != nil {
			s.writeError(w, r, errors.NewDatabaseError("history query", err))
			return
		}
		sigOps, err := s.db.RecentSIGOperations(r.Context(), limit)
		if err != nil {
			s.writeError(w, r, errors.NewDatabaseError("history query", err))
			return
		}

		// Empty tables serialize as empty arrays, not null.
		if kemOps == nil {
			kemOps = []models.KEMOperationRecord{}
		}
		if sigOps == nil {
			sigOps = []models.SIGOperationRecord{}
		}

		s.writeSuccess(w, r, models.HistoryResponse{
			KEMOperations: kemOps,
			SIGOperations: sigOps,
		}, 0)
	}
}

func (s *Server) handleClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.ClearAll(r.Context()); err != nil {
			s.writeError(w, r, errors.NewDatabaseError("clear", err))
			return
		}

		s.logger.Info("History cleared")
		s.writeSuccess(w, r, map[string]string{"message": "History cleared"}, 0)
	}
}

// decodeRequest parses the JSON body. A malformed body is a client error and
// never reaches the gateway.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, r, errors.NewEncodingError("body", "invalid JSON request body"))
		return false
	}
	return true
}

func (s *Server) writeSuccess(w http.ResponseWriter, r *http.Request, result interface{}, durationMs float64) {
	s.writeJSON(w, r, http.StatusOK, models.APIResponse{
		Success:         true,
		Result:          result,
		ExecutionTimeMs: durationMs,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestInfo := tracing.GetRequestInfo(r.Context())
	s.logger.WithFields(logrus.Fields{
		"request_id": requestInfo.RequestID,
		"trace_id":   requestInfo.TraceID,
		"code":       errors.GetCode(err),
		"error":      err,
	}).Warn("Request failed")

	s.writeJSON(w, r, errors.HTTPStatus(err), models.APIResponse{
		Success: false,
		Error:   errors.GetUserMessage(err),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		requestInfo := tracing.GetRequestInfo(r.Context())
		s.logger.WithFields(logrus.Fields{
			"request_id": requestInfo.RequestID,
			"error":      err,
		}).Error("Failed to encode response")
	}
}

// saveKEMRecord persists a history row. Persistence failures are logged but do
// not fail the request; the crypto result already exists.
func (s *Server) saveKEMRecord(ctx context.Context, rec *models.KEMOperationRecord) {
	if err := s.db.SaveKEMOperation(ctx, rec); err != nil {
		s.logger.WithFields(logrus.Fields{
			"operation": rec.Operation,
			"error":     err,
		}).Warn("Failed to persist KEM operation")
	}
}

func (s *Server) saveSIGRecord(ctx context.Context, rec *models.SIGOperationRecord) {
	if err := s.db.SaveSIGOperation(ctx, rec); err != nil {
		s.logger.WithFields(logrus.Fields{
			"operation": rec.Operation,
			"error":     err,
		}).Warn("Failed to persist SIG operation")
	}
}
