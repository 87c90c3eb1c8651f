package config

import (
	"os"
	"strconv"
	"time"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	DBPath       string
	ExportDir    string
	OrderAPIURL  string
	OrderTimeout time.Duration
	RedisAddr    string
	RedisTTL     time.Duration

	PageWidth  float64
	PageHeight float64
	ExportDPI  float64
	GridSize   float64
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),

		DBPath:       getEnv("BUILDER_DB_PATH", "data/db/builder.db"),
		ExportDir:    getEnv("EXPORT_DIR", "data/exports"),
		OrderAPIURL:  getEnv("ORDER_API_URL", ""),
		OrderTimeout: time.Duration(getEnvAsInt("ORDER_TIMEOUT", 10)) * time.Second,
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisTTL:     time.Duration(getEnvAsInt("REDIS_TTL", 300)) * time.Second,

		PageWidth:  getEnvAsFloat("PAGE_WIDTH", 595),
		PageHeight: getEnvAsFloat("PAGE_HEIGHT", 842),
		ExportDPI:  getEnvAsFloat("EXPORT_DPI", 0),
		GridSize:   getEnvAsFloat("GRID_SIZE", 0),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
			return f
		}
	}
	return defaultVal
}
