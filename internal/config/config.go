package config

import "os"

type Config struct {
	Addr       string
	DBPath     string
	APIBaseURL string
}

func Default() Config {
	return Config{
		Addr:       envOr("ANITIME_ADDR", "127.0.0.1:8080"),
		DBPath:     envOr("ANITIME_DB_PATH", "anitime.db"),
		APIBaseURL: envOr("ANITIME_API_BASE_URL", "https://api.anissia.net"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
