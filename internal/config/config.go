package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// Config holds the shell settings
type Config struct {
	Hostname         string
	SampleInterval   time.Duration
	StopTimeout      time.Duration
	HistorySize      int
	RefreshInterval  time.Duration
	ArchiveRetention time.Duration
	Seed             uint64
	LogLevel         log.Lvl
	LogFile          string
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Hostname:         "minios",
		SampleInterval:   time.Second,
		StopTimeout:      time.Second,
		HistorySize:      60,
		RefreshInterval:  time.Second,
		ArchiveRetention: 6 * time.Hour,
		LogLevel:         log.WARN,
	}
}

// Load reads an optional .env file and then the environment.
// Invalid values fall back to defaults.
func Load(files ...string) *Config {
	// Missing .env is fine, plain environment variables still apply
	_ = godotenv.Load(files...)

	def := Default()
	return &Config{
		Hostname:         getEnv("MINIOS_HOSTNAME", def.Hostname),
		SampleInterval:   getDuration("MINIOS_SAMPLE_INTERVAL", def.SampleInterval),
		StopTimeout:      getDuration("MINIOS_STOP_TIMEOUT", def.StopTimeout),
		HistorySize:      getInt("MINIOS_HISTORY_SIZE", def.HistorySize),
		RefreshInterval:  getDuration("MINIOS_REFRESH_INTERVAL", def.RefreshInterval),
		ArchiveRetention: getDuration("MINIOS_ARCHIVE_RETENTION", def.ArchiveRetention),
		Seed:             getUint("MINIOS_SEED", def.Seed),
		LogLevel:         parseLevel(os.Getenv("MINIOS_LOG_LEVEL"), def.LogLevel),
		LogFile:          getEnv("MINIOS_LOG_FILE", def.LogFile),
	}
}

// getEnv returns the variable or fallback when unset
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func getUint(key string, fallback uint64) uint64 {
	n, err := strconv.ParseUint(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parseLevel(s string, fallback log.Lvl) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "info":
		return log.INFO
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return fallback
	}
}
