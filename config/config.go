// Package config loads service configuration from environment variables,
// with an api_keys.json file fallback for the API key list.
package config

import (
	"encoding/json"
	"os"
	"strings"
)

// apiKeysFile is the default on-disk fallback for the API key list. It is
// consulted only when WXPUSH_API_KEYS is unset or empty.
const apiKeysFile = "api_keys.json"

// Config holds service configuration. It is loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	Port     string
	LogLevel string

	// APIKeys is the allow-list of caller credentials. An empty list means
	// every request is rejected.
	APIKeys []string

	// APIKeySecret is the shared secret for the optional HMAC signature
	// mode. Empty disables signature verification (signed requests fail).
	APIKeySecret string

	// DefaultTemplateID is used by the wechat channel when the request
	// carries no template_id.
	DefaultTemplateID string

	// DefaultAgentID is used by the workwechat channel when the request
	// carries no agentid.
	DefaultAgentID string
}

// Load reads config from environment variables with sensible defaults.
// PORT (Cloud Run standard) takes precedence over WXPUSH_PORT.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = os.Getenv("WXPUSH_PORT")
	}
	if port == "" {
		port = "5566"
	}

	logLevel := os.Getenv("WXPUSH_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	keys := parseAPIKeys(os.Getenv("WXPUSH_API_KEYS"))
	if len(keys) == 0 {
		keys = loadAPIKeysFromFile(apiKeysFile)
	}

	return &Config{
		Port:              port,
		LogLevel:          logLevel,
		APIKeys:           keys,
		APIKeySecret:      os.Getenv("WXPUSH_API_KEY_SECRET"),
		DefaultTemplateID: os.Getenv("WXPUSH_DEFAULT_TEMPLATE_ID"),
		DefaultAgentID:    os.Getenv("WXPUSH_DEFAULT_AGENTID"),
	}
}

// parseAPIKeys splits a comma-separated key list, trimming whitespace and
// dropping empty entries.
func parseAPIKeys(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// loadAPIKeysFromFile reads the {"valid_keys": [...]} fallback file.
// A missing or malformed file yields no keys rather than an error: the
// server still starts, it just rejects everything.
func loadAPIKeysFromFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc struct {
		ValidKeys []string `json:"valid_keys"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc.ValidKeys
}
