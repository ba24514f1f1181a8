package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"davcal/src-server/blueprint"
	"davcal/src-server/caldav"
	"davcal/src-server/ical/timezone"
	"davcal/src-server/model"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config   *Config
	BunDB    *bun.DB
	Registry *timezone.Registry
	Builder  *blueprint.Builder

	// nil when CALDAV_URL is not set
	Caldav *caldav.Client
	// nil when DISCORD_APP_TOKEN is not set
	DgSession *discordgo.Session

	MetricChans        *Metric
	AppCloseSignalChan chan os.Signal

	shutdownMu            sync.Mutex
	gracefulShutdownChans []chan struct{}
}

func NewAppState() *AppState {
	as := &AppState{
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
	}

	// env
	as.Config = NewConfig()

	// time zones & blueprints
	as.Registry = timezone.NewRegistry(
		timezone.DefaultProvider(as.Config.GetTzDir()),
		timezone.WithObservanceReordering(as.Config.GetTzReorderObservances()),
	)
	as.Builder = blueprint.NewBuilder(as.Registry,
		blueprint.WithLocation(as.Config.GetLocation()),
		blueprint.WithProdID(as.Config.GetProdID()),
	)

	// database
	rawDB, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=rwc", as.Config.GetDatabasePath()))
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	rawDB.SetMaxIdleConns(8)
	as.BunDB = bun.NewDB(rawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if err := model.CreateSchema(context.Background(), as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	// caldav
	if url := as.Config.GetCaldavURL(); url != "" {
		as.Caldav, err = caldav.NewClient(url,
			as.Config.GetCaldavUsername(),
			as.Config.GetCaldavPassword(),
			caldav.WithObserver(func(method string, status int, latency time.Duration) {
				Send(as.MetricChans.CaldavRequest, float64(latency.Microseconds()))
			}),
		)
		if err != nil {
			slog.Error("invalid CALDAV_URL", "error", err)
			os.Exit(1)
		}
	}

	// discord
	if token := as.Config.GetDiscordAppToken(); token != "" {
		as.DgSession, err = discordgo.New("Bot " + token)
		if err != nil {
			slog.Error("can't create discord session", "error", err)
			os.Exit(1)
		}
	}

	return as
}

// Get a channel closed on graceful shutdown
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return &ch
}

// Close every shutdown channel and release the database
func (as *AppState) GracefulShutdown() {
	as.shutdownMu.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	as.shutdownMu.Unlock()

	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}

// Post a message to the notification channel. Does nothing when Discord is
// not configured.
func (as *AppState) Notify(content string) {
	if as.DgSession == nil {
		return
	}
	start := time.Now()
	if _, err := as.DgSession.ChannelMessageSend(as.Config.GetDiscordChannelID(), content); err != nil {
		slog.Warn("can't send discord notification", "error", err)
		return
	}
	Send(as.MetricChans.DiscordSendMessage, float64(time.Since(start).Microseconds()))
}

// Run a database read, recording its latency
func (as *AppState) DBRead(fn func() error) error {
	start := time.Now()
	err := fn()
	Send(as.MetricChans.DatabaseRead, float64(time.Since(start).Microseconds()))
	return err
}

// Run a database write, recording its latency
func (as *AppState) DBWrite(fn func() error) error {
	start := time.Now()
	err := fn()
	Send(as.MetricChans.DatabaseWrite, float64(time.Since(start).Microseconds()))
	return err
}
