package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort             string
	MongoURI             string
	MongoDBName          string
	RedisAddr            string
	RedisPassword        string
	KafkaBrokers         []string
	DefaultPaymentOption string
	RequestTimeout       time.Duration
	ShutdownTimeout      time.Duration
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		HTTPPort:             getEnv("HTTP_PORT", "8082"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:          getEnv("MONGO_DB_NAME", "qkart"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:         strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		DefaultPaymentOption: getEnv("DEFAULT_PAYMENT_OPTION", "PAYMENT_OPTION_DEFAULT"),
		RequestTimeout:       30 * time.Second,
		ShutdownTimeout:      10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
