package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"davcal/src-server/metric"
	"davcal/src-server/route"
	"davcal/src-server/scheduler"
	"davcal/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	// config, database, time zone registry, blueprint builder, caldav client
	as := utils.NewAppState()

	if as.DgSession != nil {
		if err := as.DgSession.Open(); err != nil {
			slog.Error("can't open discord session, notifications are disabled", "error", err)
			as.DgSession = nil
		}
	}

	go metric.Init(as)
	scheduler.Start(as)

	// http server
	server := &http.Server{
		Addr:              ":" + as.Config.GetPort(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		route.Ical(muxer, as)
		route.Calendar(muxer, as)
		server.Handler = muxer
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("Gracefully shutting down...")
	if err := server.Close(); err != nil {
		slog.Warn("can't close HTTP server", "error", err)
	}
	as.GracefulShutdown()
}
