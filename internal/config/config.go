package config

import "os"

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	PostgresDSN string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
}

// DefaultJWTSecret only exists so the service boots in local dev.
// Set JWT_SECRET in any real deployment.
const DefaultJWTSecret = "your-secret-key"

func Load() *Config {
	return &Config{
		Port:        getenv("PORT", "8080"),
		PostgresDSN: getenv("POSTGRES_DSN", ""),
		MongoURI:    getenv("MONGO_URI", ""),
		MongoDB:     getenv("MONGO_DB", "booktracker"),
		JWTSecret:   getenv("JWT_SECRET", DefaultJWTSecret),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
