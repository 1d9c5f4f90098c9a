package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServerAddr   string
	TrustProxy   bool
	MaxBodyBytes int64 // bytes for /collect payload

	PixelEndpoint    string // default beacon endpoint baked into rendered surfaces
	PixelAlt         string // default alt text for image surfaces
	UpstreamEndpoint string // server-side beacon target; empty disables dispatch

	RecordDurationMS int // recorder session length
	RecordThrottleMS int // minimum interval between recorder sends
	RecordMaxMoves   int // stored movement samples per session

	Debug   bool     // verbose dispatch decision logging (BILDIT_DEBUG)
	Outputs []string // enabled sinks: log, kafka, postgres
}

func getOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func getBool(k string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
	switch v {
	case "1", "t", "true", "y", "yes":
		return true
	case "0", "f", "false", "n", "no":
		return false
	}
	return def
}
func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
func getInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getStringSlice(k, def string) []string {
	v := os.Getenv(k)
	if v == "" {
		v = def
	}
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func Load() Config {
	return Config{
		ServerAddr:   getOr("SERVER_ADDR", ":19890"),
		TrustProxy:   getBool("TRUST_PROXY", false),
		MaxBodyBytes: getInt64("MAX_BODY_BYTES", 1<<20), // 1 MiB default

		PixelEndpoint:    getOr("PIXEL_ENDPOINT", "/px.gif"),
		PixelAlt:         getOr("PIXEL_ALT", ""),
		UpstreamEndpoint: getOr("UPSTREAM_ENDPOINT", ""), // set to forward bot hits upstream

		RecordDurationMS: getInt("RECORD_DURATION_MS", 10000),
		RecordThrottleMS: getInt("RECORD_THROTTLE_MS", 1000),
		RecordMaxMoves:   getInt("RECORD_MAX_MOVEMENTS", 100),

		Debug:   getBool("BILDIT_DEBUG", false),
		Outputs: getStringSlice("OUTPUTS", "log"), // default to log only
	}
}
