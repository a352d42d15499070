// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	ServiceName        string
	Env                string
	LogLevel           string
	LogFile            string
	HTTPAddr           string
	OrderStore         string
	SQLitePath         string
	PaymentSuccessRate float64
	ShutdownTimeout    time.Duration
}

// Load reads every setting once, applying defaults for unset variables.
func Load() (Config, error) {
	cfg := Config{
		ServiceName: getenvDefault("SERVICE_NAME", "minishop-checkout"),
		Env:         getenvDefault("ENV", "dev"),
		LogLevel:    getenvDefault("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		OrderStore:  strings.ToLower(getenvDefault("ORDER_STORE", StoreMemory)),
		SQLitePath:  getenvDefault("SQLITE_PATH", "minishop.db"),
	}

	switch cfg.OrderStore {
	case StoreMemory, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("%w: ORDER_STORE=%q (want memory or sqlite)", ErrInvalid, cfg.OrderStore)
	}

	rate, err := strconv.ParseFloat(getenvDefault("PAYMENT_SUCCESS_RATE", "0.9"), 64)
	if err != nil || rate < 0 || rate > 1 {
		return Config{}, fmt.Errorf("%w: PAYMENT_SUCCESS_RATE must be between 0 and 1", ErrInvalid)
	}
	cfg.PaymentSuccessRate = rate

	timeout, err := time.ParseDuration(getenvDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be a positive duration", ErrInvalid)
	}
	cfg.ShutdownTimeout = timeout

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
