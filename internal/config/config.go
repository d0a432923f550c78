package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/MinSomai/payload/internal/collection"
)

var ErrMissingEnv = errors.New("environment variable is not set")

type Config struct {
	Port            string
	Storage         string
	JWTSecret       string
	CollectionsFile string
	Localization    collection.Localization
	LogLevel        string
	LogFormat       string
	DB              Database
}

type Database struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

func LoadEnv(files ...string) {
	err := godotenv.Load(files...)
	if err != nil {
		log.Debug().Msg(".env file not found")
	}
}

// GetEnv возвращает обязательную переменную окружения
func GetEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, key)
	}
	return value, nil
}

func getEnvDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// Load собирает конфигурацию из окружения. Переменные DB_* обязательны
// только для хранилища postgres.
func Load() (*Config, error) {
	secret, err := GetEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:            getEnvDefault("PORT", "8080"),
		Storage:         getEnvDefault("STORAGE", "memory"),
		JWTSecret:       secret,
		CollectionsFile: os.Getenv("COLLECTIONS_FILE"),
		LogLevel:        getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvDefault("LOG_FORMAT", "json"),
		Localization: collection.Localization{
			Locales:       splitList(os.Getenv("LOCALES")),
			DefaultLocale: os.Getenv("DEFAULT_LOCALE"),
		},
	}

	return cfg, nil
}

// LoadDatabase читает параметры подключения к PostgreSQL
func LoadDatabase() (Database, error) {
	keys := []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT"}
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := GetEnv(key)
		if err != nil {
			return Database{}, err
		}
		values[key] = v
	}

	return Database{
		Host:     values["DB_HOST"],
		User:     values["DB_USER"],
		Password: values["DB_PASSWORD"],
		Name:     values["DB_NAME"],
		Port:     values["DB_PORT"],
		SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
