package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/iammonth1997/tdlao-hr-web/internal/flagx"
)

// JsonConfig is the DTO for the optional JSON configuration file. Durations
// are given in seconds. Only non-zero values overlay the current config.
type JsonConfig struct {
	EndpointAddr       string `json:"endpoint_addr"`
	DatabaseDSN        string `json:"database_dsn"`
	JWTSecret          string `json:"jwt_secret"`
	PINPepper          string `json:"pin_pepper"`
	SeedAdminKey       string `json:"seed_admin_key"`
	SessionTokenPepper string `json:"session_token_pepper"`
	SessionTTLSeconds  int64  `json:"session_ttl_seconds"`
	StoreSessions      *bool  `json:"store_sessions"`
	CORSOrigin         string `json:"cors_origin"`
	ClientIPHeader     string `json:"client_ip_header"`
}

// parseJson overlays values from the JSON file named by -c/-config, if any.
// An unreadable or invalid file is a fatal configuration error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.JWTSecret != "" {
		config.JWTSecret = c.JWTSecret
	}
	if c.PINPepper != "" {
		config.PINPepper = c.PINPepper
	}
	if c.SeedAdminKey != "" {
		config.SeedAdminKey = c.SeedAdminKey
	}
	if c.SessionTokenPepper != "" {
		config.SessionTokenPepper = c.SessionTokenPepper
	}
	if c.SessionTTLSeconds > 0 {
		config.SessionTTL = time.Duration(c.SessionTTLSeconds) * time.Second
	}
	if c.StoreSessions != nil {
		config.StoreSessions = *c.StoreSessions
	}
	if c.CORSOrigin != "" {
		config.CORSOrigin = c.CORSOrigin
	}
	if c.ClientIPHeader != "" {
		config.ClientIPHeader = c.ClientIPHeader
	}
}
