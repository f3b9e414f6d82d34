package config

import (
    "os"
    "time"
)

// CacheConfig defines settings for the seat-availability cache.  When
// Enabled is false or no Redis client is configured, availability is
// always served from the authoritative store.  TTL bounds staleness
// when an invalidation is lost; Prefix namespaces the Redis keys.
type CacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: getenv("AVAILABILITY_CACHE_ENABLED", "true") == "true",
        TTL:     parseDur(getenv("AVAILABILITY_CACHE_TTL", "30s")),
        Prefix:  getenv("AVAILABILITY_CACHE_PREFIX", "schedule"),
    }
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
