package ratelimit

import (
	"strings"
	"time"
)

// Paths of the rate-limited API endpoints.
const (
	PathTailor  = "/api/tailor-cv"
	PathExtract = "/api/extract-job"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return EndpointConfigs(30, time.Hour, 60, time.Minute)
}

// EndpointConfigs builds the per-endpoint budgets for the tailoring and extraction endpoints.
func EndpointConfigs(tailorLimit int, tailorWindow time.Duration, extractLimit int, extractWindow time.Duration) []EndpointConfig {
	return []EndpointConfig{
		{Path: PathTailor, Method: "POST", Limit: tailorLimit, Window: tailorWindow, Burst: burstFor(tailorLimit, 5)},
		{Path: PathExtract, Method: "POST", Limit: extractLimit, Window: extractWindow, Burst: burstFor(extractLimit, 10)},
	}
}

func burstFor(limit, maxBurst int) int {
	if limit < maxBurst {
		return limit
	}
	return maxBurst
}

// IPSet turns a list of addresses into a lookup set, skipping blanks.
func IPSet(ips []string) map[string]bool {
	result := make(map[string]bool, len(ips))
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
