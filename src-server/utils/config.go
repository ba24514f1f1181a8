package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"davcal/src-server/ical"

	"github.com/robfig/cron/v3"
)

type Config struct {
	port         string
	databasePath string
	apiToken     string

	prodID               string
	tzDir                string
	tzReorderObservances bool
	location             *time.Location

	caldavURL           string
	caldavUsername      string
	caldavPassword      string
	caldavCheckSchedule string

	discordAppToken  string
	discordChannelID string

	metricCollectionInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		databasePath: func() string {
			path := os.Getenv("DATABASE_PATH")
			if path == "" {
				path = "./sqlite.db"
			}
			slog.Debug("env", "DATABASE_PATH", path)
			return path
		}(),
		apiToken: func() string {
			token := os.Getenv("API_TOKEN")
			if token == "" {
				slog.Warn("API_TOKEN is not set, the HTTP API is open")
				return ""
			}
			slog.Debug("env", "API_TOKEN", mask(token))
			return token
		}(),

		prodID: func() string {
			prodID := os.Getenv("PRODID")
			if prodID == "" {
				prodID = ical.DefaultProdID
			}
			slog.Debug("env", "PRODID", prodID)
			return prodID
		}(),
		tzDir: func() string {
			dir := os.Getenv("TZ_DIR")
			if dir == "" {
				slog.Debug("TZ_DIR is not set, VTIMEZONEs come from tzdata")
				return ""
			}
			info, err := os.Stat(dir)
			if err != nil {
				slog.Error("can't get info of TZ_DIR", "error", err)
				os.Exit(1)
			}
			if !info.IsDir() {
				slog.Error("TZ_DIR is not a directory", "dir", dir)
				os.Exit(1)
			}
			slog.Debug("env", "TZ_DIR", dir)
			return filepath.Clean(dir)
		}(),
		tzReorderObservances: func() bool {
			raw := os.Getenv("TZ_REORDER_OBSERVANCES")
			if raw == "" {
				return false
			}
			reorder, err := strconv.ParseBool(raw)
			if err != nil {
				slog.Error("invalid TZ_REORDER_OBSERVANCES", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "TZ_REORDER_OBSERVANCES", reorder)
			return reorder
		}(),
		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "", "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil || loc == time.Local {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", loc)
			return loc
		}(),

		caldavURL: func() string {
			url := os.Getenv("CALDAV_URL")
			if url == "" {
				slog.Warn("CALDAV_URL is not set, CalDAV routes are disabled")
			}
			slog.Debug("env", "CALDAV_URL", url)
			return url
		}(),
		caldavUsername: func() string {
			username := os.Getenv("CALDAV_USERNAME")
			slog.Debug("env", "CALDAV_USERNAME", username)
			return username
		}(),
		caldavPassword: os.Getenv("CALDAV_PASSWORD"),
		caldavCheckSchedule: func() string {
			schedule := os.Getenv("CALDAV_CHECK_SCHEDULE")
			if schedule == "" {
				schedule = "@every 5m"
			}
			if _, err := cron.ParseStandard(schedule); err != nil {
				slog.Error("invalid CALDAV_CHECK_SCHEDULE", "schedule", schedule, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "CALDAV_CHECK_SCHEDULE", schedule)
			return schedule
		}(),

		discordAppToken: func() string {
			token := os.Getenv("DISCORD_APP_TOKEN")
			if token == "" {
				slog.Debug("DISCORD_APP_TOKEN is not set, notifications are disabled")
				return ""
			}
			slog.Debug("env", "DISCORD_APP_TOKEN", mask(token))
			return token
		}(),
		discordChannelID: func() string {
			channelID := os.Getenv("DISCORD_CHANNEL_ID")
			if channelID == "" && os.Getenv("DISCORD_APP_TOKEN") != "" {
				slog.Error("DISCORD_CHANNEL_ID is required when DISCORD_APP_TOKEN is set")
				os.Exit(1)
			}
			slog.Debug("env", "DISCORD_CHANNEL_ID", channelID)
			return channelID
		}(),

		metricCollectionInterval: func() time.Duration {
			raw := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if raw == "" {
				raw = "10s"
			}
			interval, err := time.ParseDuration(raw)
			if err != nil || interval <= 0 {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "value", raw, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", interval)
			return interval
		}(),
	}
}

func mask(secret string) string {
	if len(secret) <= 3 {
		return "..."
	}
	return secret[0:3] + "..."
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get API_TOKEN env, empty when the API is open
func (c *Config) GetAPIToken() string {
	return c.apiToken
}

// Get PRODID env
func (c *Config) GetProdID() string {
	return c.prodID
}

// Get TZ_DIR env
func (c *Config) GetTzDir() string {
	return c.tzDir
}

// Get TZ_REORDER_OBSERVANCES env
func (c *Config) GetTzReorderObservances() bool {
	return c.tzReorderObservances
}

// Get TIMEZONE env, default to UTC
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get CALDAV_URL env
func (c *Config) GetCaldavURL() string {
	return c.caldavURL
}

// Get CALDAV_USERNAME env
func (c *Config) GetCaldavUsername() string {
	return c.caldavUsername
}

// Get CALDAV_PASSWORD env
func (c *Config) GetCaldavPassword() string {
	return c.caldavPassword
}

// Get CALDAV_CHECK_SCHEDULE env, default to every 5 minutes
func (c *Config) GetCaldavCheckSchedule() string {
	return c.caldavCheckSchedule
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_CHANNEL_ID env
func (c *Config) GetDiscordChannelID() string {
	return c.discordChannelID
}

// Get METRIC_COLLECTION_INTERVAL env, default to 10s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
