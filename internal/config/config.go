package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config параметры сервиса; собирается один раз на старте и передаётся
// в конструкторы явно, без пакетных глобалов
type Config struct {
	Port              string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPass            string
	DBName            string
	DBSSLMode         string
	ProductServiceURL string
}

// Load читает .env (если есть) и переменные окружения с дефолтами
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	return &Config{
		Port:              getEnv("PORT", "8082"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPass:            getEnv("DB_PASS", "postgres"),
		DBName:            getEnv("DB_NAME", "orders"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		ProductServiceURL: getEnv("PRODUCT_SERVICE_URL", "http://product-service:8081"),
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
