package config

import (
	"os"
	"strconv"
	"time"

	"github.com/finflowhq/finflow-backend/internal/dto"
)

type Config struct {
	ProjectID        string
	Region           string
	LogLevel         string
	DatabaseURL      string
	VertexModel      string
	VertexTimeout    time.Duration
	KMSKeyName       string
	PlaidClientID    string
	PlaidSecret      string
	PlaidEnvironment dto.PlaidEnvironment

	DashboardTTL time.Duration
	InsightsTTL  time.Duration
	HistoryTTL   time.Duration
}

func New() *Config {
	return &Config{
		ProjectID:        os.Getenv("PROJECTID"),
		Region:           os.Getenv("REGION"),
		LogLevel:         os.Getenv("LOGLEVEL"),
		DatabaseURL:      os.Getenv("DATABASEURL"),
		VertexModel:      os.Getenv("VERTEXMODEL"),
		VertexTimeout:    getDuration("VERTEXTIMEOUTSECONDS", 30*time.Second),
		KMSKeyName:       os.Getenv("KMSKEYNAME"),
		PlaidClientID:    os.Getenv("PLAIDCLIENTID"),
		PlaidSecret:      os.Getenv("PLAIDSECRET"),
		PlaidEnvironment: getPlaidEnvironment(os.Getenv("PLAIDENVIRONMENT")),

		DashboardTTL: getDuration("DASHBOARDTTLSECONDS", 300*time.Second),
		InsightsTTL:  getDuration("INSIGHTSTTLSECONDS", 3600*time.Second),
		HistoryTTL:   getDuration("HISTORYTTLSECONDS", 600*time.Second),
	}
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func getPlaidEnvironment(env string) dto.PlaidEnvironment {
	switch env {
	case "sandbox":
		return dto.PlaidSandbox
	default: // "production"
		return dto.PlaidProduction
	}
}
