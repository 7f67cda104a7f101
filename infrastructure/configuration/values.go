package configuration

import (
	"os"
	"strings"
)

// getConfigValue gets value from config first, then environment variable, then default.
// Environment variables take precedence when provided.
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Placeholders like "YOUR_CLIENT_ID" from sample configs count as unset
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
