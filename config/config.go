package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// LogSettings holds the logging options, the only settings read from the environment
type LogSettings struct {
	Level  slog.Level
	Output string // stderr, stdout or file
	File   string
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// LoadLogSettings reads LOG_LEVEL, LOG_OUTPUT and LOG_FILE after loading .env files
func LoadLogSettings() LogSettings {
	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	return LogSettings{
		Level:  parseLevel(getEnv("LOG_LEVEL", "warn")),
		Output: strings.ToLower(getEnv("LOG_OUTPUT", "stderr")),
		File:   getEnv("LOG_FILE", "pdftopng.log"),
	}
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// SetupLogging builds the application logger; verbose forces debug level
func SetupLogging(settings LogSettings, verbose bool) *slog.Logger {
	level := settings.Level
	if verbose {
		level = slog.LevelDebug
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	var logWriter io.Writer
	switch settings.Output {
	case "stdout":
		logWriter = os.Stdout
	case "file":
		logPath, err := filepath.Abs(filepath.ToSlash(settings.File))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file path: %v\n", err)
			logWriter = os.Stderr
			break
		}
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			logWriter = os.Stderr
			break
		}
		logWriter = logFile
	default:
		logWriter = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(logWriter, handlerOptions))
	Logger = logger
	return logger
}
