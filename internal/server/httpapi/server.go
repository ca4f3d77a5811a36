// Package httpapi is the gin transport for the auth service: routing, payload
// parsing, CORS and cache headers, and the error-to-status mapping. It holds
// no business rules; those live in the services package.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iammonth1997/tdlao-hr-web/internal/logging"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/config"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/services"
)

// AuthService is the slice of the auth orchestrator the transport needs.
type AuthService interface {
	Check(ctx context.Context, empID, clientIP string) (*services.CheckResult, error)
	Register(ctx context.Context, req services.RegisterRequest) (*services.TokenResult, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.TokenResult, error)
	Seed(ctx context.Context, seedKey string, records []models.SeedRecord) (*models.SeedSummary, error)
	VerifyToken(ctx context.Context, token, deviceID string) (*services.VerifyResult, error)
}

// Server exposes the auth actions over HTTP.
type Server struct {
	svc    AuthService
	db     *sql.DB
	logger logging.Logger

	corsOrigin string
	ipHeader   string
}

// NewServer builds the transport over the given service. db is only used by
// the health endpoint.
func NewServer(svc AuthService, db *sql.DB, cfg *config.Config, logger logging.Logger) *Server {
	return &Server{
		svc:        svc,
		db:         db,
		logger:     logger.With("module", "httpapi"),
		corsOrigin: cfg.CORSOrigin,
		ipHeader:   cfg.ClientIPHeader,
	}
}

// Router assembles the gin engine. Each action is reachable both at its own
// path and, via the fallback route, through an explicit "action" payload key.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.baseHeaders)

	r.Any("/check", s.handleCheck)
	r.Any("/register", s.handleRegister)
	r.Any("/login", s.handleLogin)
	r.Any("/seed", s.handleSeed)
	r.Any("/verify", s.handleVerify)
	r.GET("/healthz", s.handleHealthz)

	r.NoRoute(s.handleByActionKey)

	return r
}

// baseHeaders attaches CORS and no-store headers to every response and
// answers preflight requests directly.
func (s *Server) baseHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", s.corsOrigin)
	h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	h.Set("Access-Control-Allow-Headers", "content-type,authorization,x-seed-key")
	h.Set("Access-Control-Max-Age", "86400")
	h.Set("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// clientIP prefers the configured trusted proxy header over the socket peer.
func (s *Server) clientIP(c *gin.Context) string {
	if s.ipHeader != "" {
		if ip := c.GetHeader(s.ipHeader); ip != "" {
			return ip
		}
	}
	return c.ClientIP()
}

// handleByActionKey serves clients that post everything to one URL and name
// the operation in the body, or that address an action path the exact-match
// routes did not catch (for example a case variant).
func (s *Server) handleByActionKey(c *gin.Context) {
	p := parsePayload(c)

	action := p.action()
	if action == "" {
		action = strings.ToLower(strings.Trim(c.Request.URL.Path, "/"))
	}

	switch action {
	case "check":
		s.check(c, p)
	case "register":
		s.register(c, p)
	case "login":
		s.login(c, p)
	case "seed":
		s.seed(c, p)
	case "verify":
		s.verify(c, p)
	case "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing action"})
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown action"})
	}
}

func (s *Server) handleCheck(c *gin.Context)    { s.check(c, parsePayload(c)) }
func (s *Server) handleRegister(c *gin.Context) { s.register(c, parsePayload(c)) }
func (s *Server) handleLogin(c *gin.Context)    { s.login(c, parsePayload(c)) }
func (s *Server) handleSeed(c *gin.Context)     { s.seed(c, parsePayload(c)) }
func (s *Server) handleVerify(c *gin.Context)   { s.verify(c, parsePayload(c)) }

func (s *Server) check(c *gin.Context, p payload) {
	res, err := s.svc.Check(c.Request.Context(), p.empID(), s.clientIP(c))
	if err != nil {
		s.writeError(c, "check", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":     res.Exists,
		"active":     res.Active,
		"registered": res.Registered,
	})
}

func (s *Server) register(c *gin.Context, p payload) {
	res, err := s.svc.Register(c.Request.Context(), services.RegisterRequest{
		EmpID:    p.empID(),
		PIN:      p.str("pin"),
		DeviceID: p.str("device_id"),
		DOB:      p.str("dob"),
		ClientIP: s.clientIP(c),
	})
	if err != nil {
		s.writeError(c, "register", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"token":      res.Token,
		"token_type": res.TokenType,
		"expires_in": res.ExpiresIn,
		"emp_id":     res.EmpID,
	})
}

func (s *Server) login(c *gin.Context, p payload) {
	res, err := s.svc.Login(c.Request.Context(), services.LoginRequest{
		EmpID:    p.empID(),
		PIN:      p.str("pin"),
		DeviceID: p.str("device_id"),
		ClientIP: s.clientIP(c),
	})
	if err != nil {
		s.writeError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      res.Token,
		"token_type": res.TokenType,
		"expires_in": res.ExpiresIn,
		"emp_id":     res.EmpID,
	})
}

func (s *Server) seed(c *gin.Context, p payload) {
	seedKey := c.GetHeader("X-Seed-Key")
	if seedKey == "" {
		seedKey = p.str("seed_key")
	}

	summary, err := s.svc.Seed(c.Request.Context(), seedKey, p.seedRecords())
	if err != nil {
		s.writeError(c, "seed", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) verify(c *gin.Context, p payload) {
	token := bearerToken(c, p)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	res, err := s.svc.VerifyToken(c.Request.Context(), token, p.str("device_id"))
	if err != nil {
		s.writeError(c, "verify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"emp_id": res.EmpID,
		"exp":    res.ExpiresAt,
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
