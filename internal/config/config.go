package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for the service.
type Config struct {
	Port                  string
	MongoURI              string
	DBName                string
	JWTSecret             string
	ClientURL             string
	SingleSessionPresence bool
}

// LoadConfig reads configuration from the environment, loading a .env
// file first when one is present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:                getEnv("DB_NAME", "learning_tracker"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		ClientURL:             getEnv("CLIENT_URL", "http://localhost:3000"),
		SingleSessionPresence: getEnv("SINGLE_SESSION_PRESENCE", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
