package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	JWTSecret   string
	CORSOrigins []string
	Database    DatabaseConfig
	RedisAddr   string
	KafkaBroker string
	S3          S3Config
	SMTP        SMTPConfig
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outgoing mail is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Load reads the process environment. godotenv.Load is expected to have run
// already in main.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    getEnv("S3_BUCKET", "leave-attachments"),
			UseSSL:    getBool("S3_USE_SSL", false),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getInt("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.Database.User == "" || cfg.Database.Name == "" {
		return nil, errors.New("DB_USER and DB_NAME are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
