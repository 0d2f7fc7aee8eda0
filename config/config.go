package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application settings, loaded from the environment.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// CaptainBonusPercent is the whole-number percent of a team prize
	// routed to the captain before the even split.
	CaptainBonusPercent int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

const defaultCaptainBonusPercent = 10

// Load reads configuration from environment variables, optionally
// picking up a local .env file first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	bonus := defaultCaptainBonusPercent
	if bonusStr := os.Getenv("CAPTAIN_BONUS_PERCENT"); bonusStr != "" {
		bonus, err = strconv.Atoi(bonusStr)
		if err != nil {
			return nil, fmt.Errorf("invalid CAPTAIN_BONUS_PERCENT environment variable: %w", err)
		}
		if bonus < 0 || bonus > 100 {
			return nil, fmt.Errorf("CAPTAIN_BONUS_PERCENT must be between 0 and 100, got %d", bonus)
		}
	}

	cfg := &Config{
		DatabaseURL:         dbURL,
		JWTSecretKey:        jwtKey,
		ServerPort:          port,
		CaptainBonusPercent: bonus,
		R2AccountID:         os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:   os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:        os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:     os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}
