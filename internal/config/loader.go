package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config captures environment driven configuration values for the bot service.
type Config struct {
	HTTPPort           int
	ChannelSecret      string
	ChannelAccessToken string
	DatabaseDriver     string
	SQLiteDSN          string
	PostgresDSN        string
	AdminTokenHash     string
	SweepSchedule      string
	ReminderSchedule   string
}

// Load parses configuration from the process environment, after folding in a
// local .env file when one exists.
//
// Optional fields fall back to defaults; required values are validated and
// reported together in a localized error message.
func Load() (Config, error) {
	// Absent .env is fine; the environment may be populated by the platform.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:         8000,
		DatabaseDriver:   DriverSQLite,
		SQLiteDSN:        "file:attendance.db?_pragma=busy_timeout(5000)",
		SweepSchedule:    "0 3 * * *",
		ReminderSchedule: "0 7 * * *",
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOT_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOT_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if secret := strings.TrimSpace(os.Getenv("BOT_CHANNEL_SECRET")); secret == "" {
		missing = append(missing, "BOT_CHANNEL_SECRET")
	} else {
		cfg.ChannelSecret = secret
	}

	if token := strings.TrimSpace(os.Getenv("BOT_CHANNEL_ACCESS_TOKEN")); token == "" {
		missing = append(missing, "BOT_CHANNEL_ACCESS_TOKEN")
	} else {
		cfg.ChannelAccessToken = token
	}

	if driver := strings.TrimSpace(os.Getenv("BOT_DATABASE_DRIVER")); driver != "" {
		switch driver {
		case DriverSQLite, DriverPostgres:
			cfg.DatabaseDriver = driver
		default:
			invalid = append(invalid, "BOT_DATABASE_DRIVER")
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOT_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("BOT_POSTGRES_DSN"))
	if cfg.DatabaseDriver == DriverPostgres && cfg.PostgresDSN == "" {
		missing = append(missing, "BOT_POSTGRES_DSN")
	}

	cfg.AdminTokenHash = strings.TrimSpace(os.Getenv("BOT_ADMIN_TOKEN_HASH"))

	if spec := strings.TrimSpace(os.Getenv("BOT_SWEEP_SCHEDULE")); spec != "" {
		cfg.SweepSchedule = spec
	}
	if spec := strings.TrimSpace(os.Getenv("BOT_REMINDER_SCHEDULE")); spec != "" {
		cfg.ReminderSchedule = spec
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
