package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/pkg/db"
)

type Config struct {
	PORT               string
	DB_HOST            string
	DB_PORT            string
	DB_USER            string
	DB_PASSWORD        string
	DB_NAME            string
	ES_URL             string
	ES_USER            string
	ES_PASSWORD        string
	JWT_SECRET         string
	KAFKA_ADDRESS      string
	UPLOAD_URL         string
	LOG_LEVEL          string
	STRICT_TRANSITIONS bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	strict := true
	if v := os.Getenv("STRICT_TRANSITIONS"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("STRICT_TRANSITIONS: %w", err)
		}
		strict = parsed
	}

	config := &Config{
		PORT:               os.Getenv("PORT"),
		DB_HOST:            os.Getenv("DB_HOST"),
		DB_PORT:            os.Getenv("DB_PORT"),
		DB_USER:            os.Getenv("DB_USER"),
		DB_PASSWORD:        os.Getenv("DB_PASSWORD"),
		DB_NAME:            os.Getenv("DB_NAME"),
		ES_URL:             os.Getenv("ES_URL"),
		ES_USER:            os.Getenv("ES_USER"),
		ES_PASSWORD:        os.Getenv("ES_PASSWORD"),
		JWT_SECRET:         os.Getenv("JWT_SECRET"),
		KAFKA_ADDRESS:      os.Getenv("KAFKA_ADDRESS"),
		UPLOAD_URL:         os.Getenv("UPLOAD_URL"),
		LOG_LEVEL:          os.Getenv("LOG_LEVEL"),
		STRICT_TRANSITIONS: strict,
	}

	if config.PORT == "" {
		config.PORT = "8080"
	}

	return config, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.Review{},
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Reservation{},
		&models.ReservationItem{},
	)
}

func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to db: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return conn, nil
}
