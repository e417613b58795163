package common

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Env holds process-level settings. Site settings live in the config document.
type Env struct {
	Port          string
	DataDir       string
	ConfigFile    string
	AnalyticsDB   string
	CORSOrigins   []string
	SecureCookies bool
	LogLevel      string
	LogFormat     string
}

// LoadDotEnv loads .env from the working directory when one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("could not load .env: %v", err)
	}
}

// LoadEnv reads process settings, applying defaults for unset variables.
func LoadEnv() Env {
	env := Env{
		Port:          Getenv("PORT", "8080"),
		DataDir:       Getenv("DATA_DIR", "data"),
		ConfigFile:    Getenv("CONFIG_FILE", "config.json"),
		AnalyticsDB:   os.Getenv("ANALYTICS_DB"),
		SecureCookies: isTruthy(os.Getenv("SECURE_COOKIES")),
		LogLevel:      Getenv("LOG_LEVEL", "info"),
		LogFormat:     Getenv("LOG_FORMAT", "text"),
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			env.CORSOrigins = append(env.CORSOrigins, origin)
		}
	}

	return env
}

func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SetupLogging configures the global logrus logger.
func SetupLogging(level, format string) {
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
