package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/iammonth1997/tdlao-hr-web/internal/common"
	"github.com/iammonth1997/tdlao-hr-web/internal/logging"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/auth"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/config"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService records the last call per action and returns canned results.
type stubService struct {
	checkRes  *services.CheckResult
	tokenRes  *services.TokenResult
	seedRes   *models.SeedSummary
	verifyRes *services.VerifyResult
	err       error

	checkedEmpID string
	clientIP     string
	registerReq  services.RegisterRequest
	loginReq     services.LoginRequest
	seedKey      string
	seedRecords  []models.SeedRecord
	verifyToken  string
	verifyDevice string
}

func (s *stubService) Check(ctx context.Context, empID, clientIP string) (*services.CheckResult, error) {
	s.checkedEmpID, s.clientIP = empID, clientIP
	return s.checkRes, s.err
}

func (s *stubService) Register(ctx context.Context, req services.RegisterRequest) (*services.TokenResult, error) {
	s.registerReq = req
	return s.tokenRes, s.err
}

func (s *stubService) Login(ctx context.Context, req services.LoginRequest) (*services.TokenResult, error) {
	s.loginReq = req
	return s.tokenRes, s.err
}

func (s *stubService) Seed(ctx context.Context, seedKey string, records []models.SeedRecord) (*models.SeedSummary, error) {
	s.seedKey, s.seedRecords = seedKey, records
	return s.seedRes, s.err
}

func (s *stubService) VerifyToken(ctx context.Context, token, deviceID string) (*services.VerifyResult, error) {
	s.verifyToken, s.verifyDevice = token, deviceID
	return s.verifyRes, s.err
}

func newTestServer(svc *stubService) *Server {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return NewServer(svc, nil, cfg, logger)
}

func doJSON(t *testing.T, r *gin.Engine, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCheckByPathAndByActionKey(t *testing.T) {
	svc := &stubService{checkRes: &services.CheckResult{Exists: true, Active: true}}
	r := newTestServer(svc).Router()

	w := doJSON(t, r, http.MethodPost, "/check", `{"emp_id":"L2506110"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L2506110", svc.checkedEmpID)
	body := decode(t, w)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, true, body["active"])
	assert.Equal(t, false, body["registered"])

	// same operation, addressed through the action key on the root path
	svc.checkedEmpID = ""
	w = doJSON(t, r, http.MethodPost, "/", `{"action":"check","emp_id":"L2506110"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L2506110", svc.checkedEmpID)
}

func TestUnknownAndMissingAction(t *testing.T) {
	r := newTestServer(&stubService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/", `{"action":"frobnicate"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Unknown action", decode(t, w)["error"])

	// an unrecognized path is an unrecognized action, not missing input
	w = doJSON(t, r, http.MethodPost, "/frobnicate", `{}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Unknown action", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing action", decode(t, w)["error"])
}

func TestActionFromPathIsCaseInsensitive(t *testing.T) {
	svc := &stubService{checkRes: &services.CheckResult{Exists: true}}
	r := newTestServer(svc).Router()

	// route matching is exact, so a case variant lands on the fallback
	// route and resolves through the lowercased path
	w := doJSON(t, r, http.MethodPost, "/CHECK", `{"emp_id":"L2506110"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L2506110", svc.checkedEmpID)
}

func TestEmpAliasAccepted(t *testing.T) {
	svc := &stubService{
		checkRes: &services.CheckResult{Exists: true},
		tokenRes: &services.TokenResult{Token: "t"},
	}
	r := newTestServer(svc).Router()

	// deployed frontends send "emp" rather than "emp_id"
	w := doJSON(t, r, http.MethodPost, "/check", `{"emp":"L2506110"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L2506110", svc.checkedEmpID)

	w = doJSON(t, r, http.MethodPost, "/login",
		`{"emp":"L2506110","pin":"123456","device_id":"dev-abc-001"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L2506110", svc.loginReq.EmpID)

	// emp_id wins when both are present
	w = doJSON(t, r, http.MethodPost, "/register",
		`{"emp_id":"L2506110","emp":"OTHER001","pin":"123456","device_id":"dev-abc-001","dob":"1990-05-15"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L2506110", svc.registerReq.EmpID)
}

func TestBodyWinsOverQuery(t *testing.T) {
	svc := &stubService{tokenRes: &services.TokenResult{Token: "t"}}
	r := newTestServer(svc).Router()

	w := doJSON(t, r, http.MethodPost, "/login?pin=999999&emp_id=QUERY01",
		`{"emp_id":"L2506110","pin":123456,"device_id":"dev-abc-001"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L2506110", svc.loginReq.EmpID)
	// body value wins, and a numeric PIN arrives intact
	assert.Equal(t, "123456", svc.loginReq.PIN)
}

func TestQueryFillsMissingKeys(t *testing.T) {
	svc := &stubService{checkRes: &services.CheckResult{}}
	r := newTestServer(svc).Router()

	w := doJSON(t, r, http.MethodGet, "/check?emp_id=L2506110", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L2506110", svc.checkedEmpID)
}

func TestClientIPFromTrustedHeader(t *testing.T) {
	svc := &stubService{checkRes: &services.CheckResult{}}
	r := newTestServer(svc).Router()

	doJSON(t, r, http.MethodGet, "/check?emp_id=L2506110", "",
		map[string]string{"CF-Connecting-IP": "203.0.113.7"})
	assert.Equal(t, "203.0.113.7", svc.clientIP)
}

func TestCORSAndCacheHeaders(t *testing.T) {
	r := newTestServer(&stubService{checkRes: &services.CheckResult{}}).Router()

	w := doJSON(t, r, http.MethodGet, "/check?emp_id=L2506110", "", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "content-type,authorization,x-seed-key", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestPreflight(t *testing.T) {
	r := newTestServer(&stubService{}).Router()

	w := doJSON(t, r, http.MethodOptions, "/login", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Body.String())
}

func TestRegisterSuccessShape(t *testing.T) {
	svc := &stubService{tokenRes: &services.TokenResult{
		Token: "tok", TokenType: "Bearer", ExpiresIn: 28800, EmpID: "L2506110",
	}}
	r := newTestServer(svc).Router()

	w := doJSON(t, r, http.MethodPost, "/register",
		`{"emp_id":"L2506110","pin":"123456","device_id":"dev-abc-001","dob":"1990-05-15"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "tok", body["token"])
	assert.Equal(t, "Bearer", body["token_type"])
	assert.Equal(t, float64(28800), body["expires_in"])
	assert.Equal(t, "L2506110", body["emp_id"])
	assert.Equal(t, "1990-05-15", svc.registerReq.DOB)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
		code   string
	}{
		{"validation", common.NewValidationError("PIN must be 6 digits"), 400, "PIN must be 6 digits", ""},
		{"unauthorized", common.ErrorUnauthorized, 401, "Invalid Employee ID or PIN", ""},
		{"dob mismatch", common.ErrorDOBMismatch, 401, "Date of birth does not match", "DOB_MISMATCH"},
		{"not found", common.ErrorNotFound, 404, "Employee not found", ""},
		{"suspended", common.ErrorSuspended, 403, "Account suspended", "RESIGNED"},
		{"already registered", common.ErrorAlreadyRegistered, 409, "Already registered. Please login.", "ALREADY_REGISTERED"},
		{"device mismatch", common.ErrorDeviceMismatch, 403, "Device mismatch", "DEVICE_MISMATCH"},
		{"forbidden", common.ErrorForbidden, 403, "Forbidden", ""},
		{"unavailable", common.ErrorUnavailable, 503, "Auth service unavailable", ""},
		{"internal", errors.New("pq: relation is on fire"), 500, "Internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestServer(&stubService{err: tt.err}).Router()
			w := doJSON(t, r, http.MethodPost, "/register",
				`{"emp_id":"L2506110","pin":"123456","device_id":"dev-abc-001","dob":"1990-05-15"}`, nil)
			assert.Equal(t, tt.status, w.Code)

			body := decode(t, w)
			assert.Equal(t, tt.msg, body["error"])
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
			}
		})
	}
}

func TestRateLimitWordingPerAction(t *testing.T) {
	r := newTestServer(&stubService{err: common.ErrorRateLimited}).Router()

	w := doJSON(t, r, http.MethodPost, "/login", `{"emp_id":"L2506110"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many login attempts", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/check", `{"emp_id":"L2506110"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests", decode(t, w)["error"])
}

func TestVerifyBearerExtraction(t *testing.T) {
	svc := &stubService{verifyRes: &services.VerifyResult{EmpID: "L2506110", ExpiresAt: 1234}}
	r := newTestServer(svc).Router()

	// scheme casing must not matter
	w := doJSON(t, r, http.MethodPost, "/verify", `{"device_id":"dev-abc-001"}`,
		map[string]string{"Authorization": "BEARER tok-from-header"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-from-header", svc.verifyToken)
	assert.Equal(t, "dev-abc-001", svc.verifyDevice)

	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "L2506110", body["emp_id"])
	assert.Equal(t, float64(1234), body["exp"])

	// falls back to the token payload field
	w = doJSON(t, r, http.MethodPost, "/verify", `{"token":"tok-from-body"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-from-body", svc.verifyToken)
}

func TestVerifyMissingAndBadToken(t *testing.T) {
	r := newTestServer(&stubService{}).Router()
	w := doJSON(t, r, http.MethodPost, "/verify", `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Missing token", decode(t, w)["error"])

	for err, msg := range map[error]string{
		auth.ErrTokenMalformed: "Invalid token format",
		auth.ErrTokenSignature: "Invalid token signature",
		auth.ErrTokenExpired:   "Token expired",
	} {
		r := newTestServer(&stubService{err: err}).Router()
		w := doJSON(t, r, http.MethodPost, "/verify", `{"token":"x"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, msg, decode(t, w)["error"])
	}
}

func TestSeedKeyHeaderAndRecords(t *testing.T) {
	svc := &stubService{seedRes: &models.SeedSummary{OK: 2, Errors: []models.SeedError{}}}
	r := newTestServer(svc).Router()

	w := doJSON(t, r, http.MethodPost, "/seed",
		`{"records":[{"emp_id":"L2506110","pin":"123456"},{"emp":"L2506111","pin":654321,"device_id":"dev-abc-001"}]}`,
		map[string]string{"X-Seed-Key": "sekrit"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "sekrit", svc.seedKey)
	require.Len(t, svc.seedRecords, 2)
	assert.Equal(t, "L2506110", svc.seedRecords[0].EmpID)
	// the emp alias and numeric pins survive extraction
	assert.Equal(t, "L2506111", svc.seedRecords[1].EmpID)
	assert.Equal(t, "654321", svc.seedRecords[1].PIN)
	assert.Equal(t, "dev-abc-001", svc.seedRecords[1].DeviceID)

	body := decode(t, w)
	assert.Equal(t, float64(2), body["ok"])
	assert.Equal(t, float64(0), body["failed"])
}

func TestSeedSingleInlineRecord(t *testing.T) {
	svc := &stubService{seedRes: &models.SeedSummary{OK: 1, Errors: []models.SeedError{}}}
	r := newTestServer(svc).Router()

	w := doJSON(t, r, http.MethodPost, "/seed",
		`{"seed_key":"sekrit","emp_id":"L2506110","pin":"123456"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "sekrit", svc.seedKey)
	require.Len(t, svc.seedRecords, 1)
	assert.Equal(t, "L2506110", svc.seedRecords[0].EmpID)
}

func TestHealthz(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	r := NewServer(&stubService{}, db, cfg, logger).Router()

	mock.ExpectPing()
	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	w = doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
