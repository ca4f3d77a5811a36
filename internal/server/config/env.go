package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays values from environment variables. Secrets normally
// arrive this way in deployment; a .env file is loaded by main before this
// runs.
func parseEnv(config *Config) {
	if v := os.Getenv("ENDPOINT_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.JWTSecret = v
	}
	if v := os.Getenv("PIN_PEPPER"); v != "" {
		config.PINPepper = v
	}
	if v := os.Getenv("SEED_ADMIN_KEY"); v != "" {
		config.SeedAdminKey = v
	}
	if v := os.Getenv("SESSION_TOKEN_PEPPER"); v != "" {
		config.SessionTokenPepper = v
	}
	if v := os.Getenv("SESSION_TTL_SECONDS"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil && secs > 0 {
			config.SessionTTL = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("STORE_LOGIN_SESSIONS"); v != "" {
		config.StoreSessions = v == "1"
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		config.CORSOrigin = v
	}
	if v := os.Getenv("CLIENT_IP_HEADER"); v != "" {
		config.ClientIPHeader = v
	}
}
