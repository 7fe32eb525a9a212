package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// Per-run crawl parameters (category, offer type, region, page cap) come from
// command-line flags instead; see main.go.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresEnabled  bool

	BaseURL     string
	MinDelayMs  int
	MaxDelayMs  int
	MaxRetries  int
	HTTPTimeout int

	CSVOutputPath  string
	XLSXOutputPath string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "agents_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),

		BaseURL:     getEnv("SREALITY_BASE_URL", "https://www.sreality.cz"),
		MinDelayMs:  getEnvInt("MIN_DELAY_MS", 1000),
		MaxDelayMs:  getEnvInt("MAX_DELAY_MS", 3000),
		MaxRetries:  getEnvInt("MAX_RETRIES", 3),
		HTTPTimeout: getEnvInt("HTTP_TIMEOUT_S", 30),

		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./data/agents.csv"),
		XLSXOutputPath: getEnv("XLSX_OUTPUT_PATH", "./data/agents.xlsx"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
