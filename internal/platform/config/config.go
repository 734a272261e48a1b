package config

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
	BcryptCost  int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MICRONATION_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "postgres://localhost:5432/micronation?sslmode=disable"
	}

	cost := bcrypt.DefaultCost
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cost = parsed
		}
	}

	return Server{
		Addr:        addr,
		DatabaseURL: databaseURL,
		BcryptCost:  cost,
	}
}
