// Package services contains the server-side business logic. This file
// implements AuthService, the orchestrator behind the five auth actions:
// check, register, login, seed, and verify.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iammonth1997/tdlao-hr-web/internal/common"
	"github.com/iammonth1997/tdlao-hr-web/internal/cryptox"
	"github.com/iammonth1997/tdlao-hr-web/internal/logging"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/auth"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/config"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/ratelimit"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/repomanager"
)

// Per-action rate limits. Login gets a separate per-employee budget so a
// targeted attacker is throttled independently of IP churn.
const (
	rateWindow       = 300 * time.Second
	checkIPLimit     = 30
	registerIPLimit  = 20
	loginIPLimit     = 30
	loginEmpIDLimit  = 8
	seedBatchMaxSize = 500
)

// Response-time padding on auth failures, so latency does not reveal which
// check rejected the attempt.
const (
	authFailureDelay    = 300 * time.Millisecond
	malformedInputDelay = 250 * time.Millisecond
)

// AuthService composes the hasher, device binding, token service, rate
// limiter, and stores into the five auth operations. It holds no mutable
// state; all shared state lives in the backing stores.
type AuthService struct {
	repos   repomanager.RepositoryManager
	limiter *ratelimit.Limiter
	tokens  *auth.TokenService
	logger  logging.Logger

	pinPepper     string
	seedAdminKey  string
	tokenPepper   string
	storeSessions bool

	delay func(ctx context.Context, d time.Duration)
}

// NewAuthService constructs an AuthService from its collaborators and the
// server config. Secrets are injected here once; business logic never reads
// ambient state.
func NewAuthService(repos repomanager.RepositoryManager, limiter *ratelimit.Limiter,
	tokens *auth.TokenService, cfg *config.Config, logger logging.Logger) *AuthService {

	tokenPepper := cfg.SessionTokenPepper
	if tokenPepper == "" {
		tokenPepper = cfg.JWTSecret
	}

	return &AuthService{
		repos:         repos,
		limiter:       limiter,
		tokens:        tokens,
		logger:        logger.With("module", "auth_service"),
		pinPepper:     cfg.PINPepper,
		seedAdminKey:  cfg.SeedAdminKey,
		tokenPepper:   tokenPepper,
		storeSessions: cfg.StoreSessions,
		delay:         sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// CheckResult is the outcome of the registration probe.
type CheckResult struct {
	Exists     bool
	Active     bool
	Registered bool
}

// TokenResult carries an issued session token back to the caller.
type TokenResult struct {
	Token     string
	TokenType string
	ExpiresIn int64
	EmpID     string
}

// VerifyResult is the outcome of token introspection.
type VerifyResult struct {
	EmpID     string
	ExpiresAt int64
}

// RegisterRequest is the input of Register, pre-extraction but
// pre-normalization: the service normalizes and validates every field.
type RegisterRequest struct {
	EmpID    string
	PIN      string
	DeviceID string
	DOB      string
	ClientIP string
}

// LoginRequest is the input of Login.
type LoginRequest struct {
	EmpID    string
	PIN      string
	DeviceID string
	ClientIP string
}

// Check probes whether an employee exists, is active, and has registered a
// PIN. An unknown id is a regular result, not an error: the probe must not
// reveal more than existence itself.
func (s *AuthService) Check(ctx context.Context, empID, clientIP string) (*CheckResult, error) {
	empID = NormalizeEmpID(empID)
	if !ValidEmpID(empID) {
		return nil, common.NewValidationError("Invalid emp_id")
	}

	if s.limiter.TooMany(ctx, "check-ip:"+clientIP, checkIPLimit, rateWindow) {
		return nil, common.ErrorRateLimited
	}

	emp, err := s.repos.Employees().Get(ctx, empID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &CheckResult{Exists: false}, nil
		}
		return nil, fmt.Errorf("employee lookup: %w", err)
	}

	result := &CheckResult{Exists: true, Active: emp.Active()}

	// A failing credential lookup degrades to "not registered" rather than
	// an error: check is a UX probe, not an auth gate.
	cred, err := s.repos.Credentials().Get(ctx, empID)
	if err == nil {
		result.Registered = cred.PINHash != ""
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "credential lookup failed during check", "emp_id", empID, "error", err)
	}

	return result, nil
}

// Register enrolls an employee: it verifies the date of birth as the one-time
// enrollment secret, creates the credential record bound to the presented
// device, and issues a token so the new device is logged in immediately.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenResult, error) {
	empID := NormalizeEmpID(req.EmpID)
	pin := NormalizePIN(req.PIN)
	deviceID := NormalizeDeviceID(req.DeviceID)
	dob := strings.TrimSpace(req.DOB)

	switch {
	case !ValidEmpID(empID):
		return nil, common.NewValidationError("Invalid emp_id")
	case !ValidPIN(pin):
		return nil, common.NewValidationError("PIN must be 6 digits")
	case !ValidDeviceID(deviceID):
		return nil, common.NewValidationError("Invalid device_id")
	case dob == "":
		return nil, common.NewValidationError("Date of birth required")
	}

	if s.limiter.TooMany(ctx, "register-ip:"+req.ClientIP, registerIPLimit, rateWindow) {
		return nil, common.ErrorRateLimited
	}

	emp, err := s.repos.Employees().Get(ctx, empID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("employee lookup: %w", err)
	}
	if !emp.Active() {
		return nil, common.ErrorSuspended
	}

	// Padded on mismatch so response latency cannot be used to enumerate
	// valid employee/DOB pairs.
	if empDOB := emp.DOBString(); empDOB == "" || empDOB != dob {
		s.delay(ctx, authFailureDelay)
		return nil, common.ErrorDOBMismatch
	}

	existing, err := s.repos.Credentials().Get(ctx, empID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("credential lookup: %w", err)
	}
	if existing != nil && existing.PINHash != "" {
		return nil, common.ErrorAlreadyRegistered
	}

	deviceHash := cryptox.DeviceBinding(empID, deviceID, s.pinPepper)
	cred := &models.Credential{
		EmpID:      empID,
		PINHash:    cryptox.HashPIN(pin, s.pinPepper),
		DeviceHash: deviceHash,
	}
	if err := s.repos.Credentials().Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("credential upsert: %w", err)
	}

	return s.issueSession(ctx, empID, deviceHash)
}

// Login verifies the PIN and device binding and issues a session token.
// Every credential failure reports the same generic error with the same
// response-time padding; only the device-mismatch case is distinct, because
// its remediation differs for a legitimate user.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResult, error) {
	empID := NormalizeEmpID(req.EmpID)
	pin := NormalizePIN(req.PIN)
	deviceID := NormalizeDeviceID(req.DeviceID)

	if !ValidEmpID(empID) || !ValidPIN(pin) || !ValidDeviceID(deviceID) {
		s.delay(ctx, malformedInputDelay)
		return nil, common.ErrorUnauthorized
	}

	ipLimited := s.limiter.TooMany(ctx, "login-ip:"+req.ClientIP, loginIPLimit, rateWindow)
	empLimited := s.limiter.TooMany(ctx, "login-emp:"+empID, loginEmpIDLimit, rateWindow)
	if ipLimited || empLimited {
		return nil, common.ErrorRateLimited
	}

	emp, err := s.repos.Employees().Get(ctx, empID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		// A broken backend must not read as "wrong credentials".
		s.logger.Error(ctx, "employee lookup failed during login", "error", err)
		return nil, common.ErrorUnavailable
	}
	if emp == nil || !emp.Active() {
		s.delay(ctx, authFailureDelay)
		return nil, common.ErrorUnauthorized
	}

	cred, err := s.repos.Credentials().Get(ctx, empID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "credential lookup failed during login", "error", err)
		return nil, common.ErrorUnavailable
	}
	if cred == nil || cred.PINHash == "" {
		s.delay(ctx, authFailureDelay)
		return nil, common.ErrorUnauthorized
	}

	ok, variant := cryptox.VerifyPIN(pin, cred.PINHash, s.pinPepper)
	if !ok {
		s.delay(ctx, authFailureDelay)
		return nil, common.ErrorUnauthorized
	}

	deviceHash := cryptox.DeviceBinding(empID, deviceID, s.pinPepper)

	// Upgrade legacy hash formats on successful login. Login proceeds even
	// if the upgrade write fails.
	if !variant.IsCurrent() {
		upgraded := &models.Credential{
			EmpID:      empID,
			PINHash:    cryptox.HashPIN(pin, s.pinPepper),
			DeviceHash: cred.DeviceHash,
		}
		if upgraded.DeviceHash == "" {
			upgraded.DeviceHash = deviceHash
		}
		if err := s.repos.Credentials().Upsert(ctx, upgraded); err != nil {
			s.logger.Warn(ctx, "pin hash upgrade skipped", "emp_id", empID, "error", err)
		} else {
			cred = upgraded
		}
	}

	if !cred.DeviceBound() {
		// Credentials seeded without a device bind on first login.
		cred.DeviceHash = deviceHash
		if err := s.repos.Credentials().Upsert(ctx, cred); err != nil {
			return nil, fmt.Errorf("device bind: %w", err)
		}
	} else if cred.DeviceHash != deviceHash {
		return nil, common.ErrorDeviceMismatch
	}

	return s.issueSession(ctx, empID, deviceHash)
}

// Seed provisions credentials in bulk. Records are validated and upserted
// independently; one bad record never aborts the batch.
func (s *AuthService) Seed(ctx context.Context, seedKey string, records []models.SeedRecord) (*models.SeedSummary, error) {
	if s.seedAdminKey == "" ||
		subtle.ConstantTimeCompare([]byte(seedKey), []byte(s.seedAdminKey)) != 1 {
		return nil, common.ErrorForbidden
	}

	if len(records) == 0 {
		return nil, common.NewValidationError("No records")
	}
	if len(records) > seedBatchMaxSize {
		return nil, common.NewValidationError("Too many records")
	}

	summary := &models.SeedSummary{Errors: []models.SeedError{}}

	for _, rec := range records {
		empID := NormalizeEmpID(rec.EmpID)
		pin := NormalizePIN(rec.PIN)
		deviceID := NormalizeDeviceID(rec.DeviceID)

		if !ValidEmpID(empID) || !ValidPIN(pin) {
			summary.Errors = append(summary.Errors, models.SeedError{EmpID: empID, Error: "Invalid emp_id or pin"})
			continue
		}
		if deviceID != "" && !ValidDeviceID(deviceID) {
			summary.Errors = append(summary.Errors, models.SeedError{EmpID: empID, Error: "Invalid device_id"})
			continue
		}

		cred := &models.Credential{
			EmpID:   empID,
			PINHash: cryptox.HashPIN(pin, s.pinPepper),
		}
		if deviceID != "" {
			cred.DeviceHash = cryptox.DeviceBinding(empID, deviceID, s.pinPepper)
		}

		if err := s.repos.Credentials().Upsert(ctx, cred); err != nil {
			s.logger.Warn(ctx, "seed upsert failed", "emp_id", empID, "error", err)
			summary.Errors = append(summary.Errors, models.SeedError{EmpID: empID, Error: "Seed failed"})
			continue
		}
		summary.OK++
	}

	summary.Failed = len(summary.Errors)
	return summary, nil
}

// VerifyToken introspects a session token. When a device id accompanies the
// request, its binding value must match the one embedded at issuance.
func (s *AuthService) VerifyToken(ctx context.Context, token, deviceID string) (*VerifyResult, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if deviceID = NormalizeDeviceID(deviceID); deviceID != "" {
		expected := cryptox.DeviceBinding(claims.Subject, deviceID, s.pinPepper)
		if expected != claims.DeviceHash {
			return nil, common.ErrorDeviceMismatch
		}
	}

	return &VerifyResult{EmpID: claims.Subject, ExpiresAt: claims.ExpiresAt.Unix()}, nil
}

func (s *AuthService) issueSession(ctx context.Context, empID, deviceHash string) (*TokenResult, error) {
	token, claims, err := s.tokens.Issue(empID, deviceHash)
	if err != nil {
		return nil, fmt.Errorf("token issue: %w", err)
	}

	if s.storeSessions {
		go s.auditSession(context.WithoutCancel(ctx), &models.Session{
			EmpID:      empID,
			DeviceHash: deviceHash,
			TokenHash:  cryptox.TokenDigest(token, s.tokenPepper),
			ExpiresAt:  claims.ExpiresAt.Time,
		})
	}

	return &TokenResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		EmpID:     empID,
	}, nil
}

// auditSession is fire-and-forget: its only error channel is the log.
func (s *AuthService) auditSession(ctx context.Context, session *models.Session) {
	if err := s.repos.Sessions().Create(ctx, session); err != nil {
		s.logger.Warn(ctx, "session audit write skipped", "emp_id", session.EmpID, "error", err)
	}
}
