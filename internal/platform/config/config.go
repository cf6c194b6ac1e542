package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del servicio leída de env/.env.
type Config struct {
	Port      string
	DBDSN     string
	JWTSecret string
	TokenTTL  time.Duration

	AppName   string
	LogLevel  string
	LogFormat string

	// SeedUsers crea los usuarios de arranque (admin/clerk/citizen)
	// cuando el store es in-memory. Solo para dev/handoff.
	SeedUsers bool
}

// Load lee config desde .env (si existe) y variables de entorno.
// Nunca falla: aplica defaults razonables para dev.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		DBDSN:     os.Getenv("DB_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  8 * time.Hour,
		AppName:   getEnv("APP_NAME", "civil-registry"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: os.Getenv("LOG_FORMAT"),
	}

	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TokenTTL = time.Duration(n) * time.Minute
		}
	}

	if v := os.Getenv("SEED_USERS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SeedUsers = b
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
