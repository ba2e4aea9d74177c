package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
}

var AppConfig *Config

func Load() {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:      GetEnv("PORT", "3000"),
		Env:       GetEnv("ENV", "development"),
		DBPath:    GetEnv("DB_PATH", "./data/notekeep.db"),
		JWTSecret: GetEnv("JWT_SECRET", ""),
		TokenTTL:  time.Duration(GetEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
