package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"pqgate/internal/backend"
	"pqgate/internal/config"
	"pqgate/internal/database"
	"pqgate/internal/gateway"
	"pqgate/internal/models"
	"pqgate/internal/monitor"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, budget models.BudgetConfig) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Budget = budget

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	kem, signer, err := backend.Select(cfg.Crypto)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	mon := monitor.New(cfg.Budget)
	gw := gateway.New(kem, signer, mon, newSampleRecorder(db, logger), logger)
	return NewServer(cfg, gw, mon, db, logger)
}

func generousBudget() models.BudgetConfig {
	return models.BudgetConfig{MaxMemoryMB: 1 << 20, MaxCPUPercent: 100, CPUSampleMs: 10}
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp models.APIResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, generousBudget())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestKEMKeygenEndpoint(t *testing.T) {
	s := newTestServer(t, generousBudget())

	w, resp := doJSON(t, s, http.MethodPost, "/api/kem/keygen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.GreaterOrEqual(t, resp.ExecutionTimeMs, 0.0)

	result := resp.Result.(map[string]interface{})
	assert.NotEmpty(t, result["public_key"])
	assert.NotEmpty(t, result["private_key"])
	assert.Equal(t, "Kyber512 (Simulated)", result["algorithm"])
}

func TestKEMFlowThroughHandlers(t *testing.T) {
	s := newTestServer(t, generousBudget())

	_, keygen := doJSON(t, s, http.MethodPost, "/api/kem/keygen", nil)
	require.True(t, keygen.Success)
	keys := keygen.Result.(map[string]interface{})

	w, encap := doJSON(t, s, http.MethodPost, "/api/kem/encapsulate", models.EncapsulateRequest{
		PublicKey: keys["public_key"].(string),
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, encap.Success)
	enc := encap.Result.(map[string]interface{})
	assert.NotEmpty(t, enc["ciphertext"])
	assert.NotEmpty(t, enc["shared_secret"])

	w, decap := doJSON(t, s, http.MethodPost, "/api/kem/decapsulate", models.DecapsulateRequest{
		PrivateKey: keys["private_key"].(string),
		Ciphertext: enc["ciphertext"].(string),
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decap.Success)
	assert.NotEmpty(t, decap.Result.(map[string]interface{})["shared_secret"])
}

func TestSIGFlowThroughHandlers(t *testing.T) {
	s := newTestServer(t, generousBudget())

	_, keygen := doJSON(t, s, http.MethodPost, "/api/sig/keygen", nil)
	require.True(t, keygen.Success)
	keys := keygen.Result.(map[string]interface{})

	w, sign := doJSON(t, s, http.MethodPost, "/api/sig/sign", models.SignRequest{
		PrivateKey: keys["private_key"].(string),
		Message:    "hello pqgate",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, sign.Success)
	signed := sign.Result.(map[string]interface{})

	w, verify := doJSON(t, s, http.MethodPost, "/api/sig/verify", models.VerifyRequest{
		PublicKey: keys["public_key"].(string),
		Message:   "hello pqgate",
		Signature: signed["signature"].(string),
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, verify.Success)
	assert.Equal(t, true, verify.Result.(map[string]interface{})["is_valid"])
}

func TestInvalidEncodingReturns400(t *testing.T) {
	s := newTestServer(t, generousBudget())

	w, resp := doJSON(t, s, http.MethodPost, "/api/kem/encapsulate", models.EncapsulateRequest{
		PublicKey: "not!base64!!",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestMalformedBodyReturns400(t *testing.T) {
	s := newTestServer(t, generousBudget())

	req := httptest.NewRequest(http.MethodPost, "/api/sig/sign", bytes.NewBufferString("{broken"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestBudgetViolationReturns429(t *testing.T) {
	// Any process exceeds a 1 MB memory ceiling.
	s := newTestServer(t, models.BudgetConfig{MaxMemoryMB: 1, MaxCPUPercent: 100, CPUSampleMs: 10})

	w, resp := doJSON(t, s, http.MethodPost, "/api/kem/keygen", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Resource constraints exceeded")
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer(t, generousBudget())

	// Empty history is an empty array payload, not null.
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kem_operations":[]`)
	assert.Contains(t, w.Body.String(), `"sig_operations":[]`)

	_, keygen := doJSON(t, s, http.MethodPost, "/api/kem/keygen", nil)
	require.True(t, keygen.Success)
	_, sigKeygen := doJSON(t, s, http.MethodPost, "/api/sig/keygen", nil)
	require.True(t, sigKeygen.Success)

	w2, resp := doJSON(t, s, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w2.Code)
	require.True(t, resp.Success)

	history := resp.Result.(map[string]interface{})
	assert.Len(t, history["kem_operations"], 1)
	assert.Len(t, history["sig_operations"], 1)
}

func TestClearEndpoint(t *testing.T) {
	s := newTestServer(t, generousBudget())

	_, keygen := doJSON(t, s, http.MethodPost, "/api/kem/keygen", nil)
	require.True(t, keygen.Success)

	w, resp := doJSON(t, s, http.MethodPost, "/api/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	_, after := doJSON(t, s, http.MethodGet, "/api/history", nil)
	history := after.Result.(map[string]interface{})
	assert.Empty(t, history["kem_operations"])
	assert.Empty(t, history["sig_operations"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, generousBudget())

	_, keygen := doJSON(t, s, http.MethodPost, "/api/kem/keygen", nil)
	require.True(t, keygen.Success)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "simulated", resp.SystemInfo.Provider)
	assert.Equal(t, "Kyber512 (Simulated)", resp.SystemInfo.KEMAlgorithm)
	assert.Greater(t, resp.Usage.MemoryMB, 0.0)

	stats := resp.Stats[models.OpKEMKeygen]
	assert.Equal(t, int64(1), stats.Count)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, generousBudget())

	req := httptest.NewRequest(http.MethodGet, "/api/kem/keygen", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
