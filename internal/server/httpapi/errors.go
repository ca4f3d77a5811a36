package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iammonth1997/tdlao-hr-web/internal/common"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/auth"
)

// genericLoginError is the single message every credential failure shares.
const genericLoginError = "Invalid Employee ID or PIN"

// writeError maps service-layer errors to wire responses. The action name
// only influences the rate-limit wording; everything else maps uniformly.
func (s *Server) writeError(c *gin.Context, action string, err error) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
		return
	}

	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": genericLoginError})
	case errors.Is(err, common.ErrorDOBMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Date of birth does not match", "code": "DOB_MISMATCH"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
	case errors.Is(err, common.ErrorSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended", "code": "RESIGNED"})
	case errors.Is(err, common.ErrorAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "Already registered. Please login.", "code": "ALREADY_REGISTERED"})
	case errors.Is(err, common.ErrorDeviceMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "Device mismatch", "code": "DEVICE_MISMATCH"})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, common.ErrorRateLimited):
		msg := "Too many requests"
		if action == "login" {
			msg = "Too many login attempts"
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": msg})
	case errors.Is(err, common.ErrorUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Auth service unavailable"})
	case errors.Is(err, auth.ErrTokenMalformed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
	case errors.Is(err, auth.ErrTokenSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token signature"})
	case errors.Is(err, auth.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
	default:
		s.logger.Error(c.Request.Context(), "unhandled handler error", "action", action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
