package metric

import (
	"log/slog"
	"time"

	"davcal/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Documents serialized by the HTTP API, by route
var DocumentsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "davcal_documents_rendered_total",
	Help: "The number of calendar documents rendered",
}, []string{"route"})

// Register a gauge, reusing the one already registered under the same name
func register(name, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if err := prometheus.Register(gauge); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			slog.Error("can't register metric", "name", name, "error", err)
			return gauge
		}
		gauge = are.ExistingCollector.(prometheus.Gauge)
	}
	slog.Debug("metric registered", "name", name)
	gauge.Set(0)
	return gauge
}

func unregister(name string, gauge prometheus.Gauge) {
	switch prometheus.Unregister(gauge) {
	case true:
		slog.Debug("metric unregistered", "name", name)
	case false:
		slog.Warn("metric not registered", "name", name)
	}
}

// Set the gauge from every sample and reset it to 0 when no sample arrived
// for clearInterval
func sampled[T any](as *utils.AppState, name, help string, samples chan T, value func(T) float64, clearInterval time.Duration) {
	gauge := register(name, help)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(name, gauge)
				return
			case sample := <-samples:
				gauge.Set(value(sample))
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// Set the gauge from probe on every tick
func polled(as *utils.AppState, name, help string, probe func() (float64, error), interval time.Duration) {
	gauge := register(name, help)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(name, gauge)
				return
			case <-ticker.C:
				v, err := probe()
				if err != nil {
					slog.Error("can't collect metric", "name", name, "error", err)
					continue
				}
				gauge.Set(v)
			}
		}
	}()
}

func identity(v float64) float64 { return v }

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	store(as, tickerInterval)
	sampled(as, "davcal_database_read_microsec", "The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead, identity, clearTickerInterval)
	sampled(as, "davcal_database_write_microsec", "The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite, identity, clearTickerInterval)
	sampled(as, "davcal_caldav_request_microsec", "The latency of a CalDAV request in microseconds",
		as.MetricChans.CaldavRequest, identity, clearTickerInterval)

	// the connection state is kept until the next check
	sampled(as, "davcal_caldav_up", "Whether the last CalDAV connection check succeeded",
		as.MetricChans.CaldavUp, func(up bool) float64 {
			if up {
				return 1
			}
			return 0
		}, 365*24*time.Hour)

	if as.DgSession != nil {
		sampled(as, "davcal_discord_send_message_microsec", "The latency of a discord message send in microseconds",
			as.MetricChans.DiscordSendMessage, identity, clearTickerInterval)
		polled(as, "davcal_discord_heartbeat_latency_microsec", "The latency of a discord heartbeat in microseconds",
			func() (float64, error) {
				return float64(as.DgSession.HeartbeatLatency().Microseconds()), nil
			}, tickerInterval)
	}
}
