package metric

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"davcal/src-server/model"
	"davcal/src-server/utils"

	"github.com/uptrace/bun"
)

// Row counts of the local store and how long counting took
type storeSample struct {
	Calendars int
	Objects   int
	Latency   time.Duration
}

func sampleStore(ctx context.Context, db bun.IDB) (storeSample, error) {
	var sample storeSample
	start := time.Now()
	calendars, err := db.NewSelect().Model((*model.Calendar)(nil)).Count(ctx)
	if err != nil {
		return sample, fmt.Errorf("sampleStore: can't count calendars: %w", err)
	}
	objects, err := db.NewSelect().Model((*model.CalendarObject)(nil)).Count(ctx)
	if err != nil {
		return sample, fmt.Errorf("sampleStore: can't count calendar objects: %w", err)
	}
	sample.Calendars, sample.Objects, sample.Latency = calendars, objects, time.Since(start)
	return sample, nil
}

// Count the stored calendars and objects on every tick
func store(as *utils.AppState, interval time.Duration) {
	latency := register("davcal_database_count_microsec", "The latency of counting the stored rows in microseconds")
	calendars := register("davcal_calendars", "The number of known remote calendars")
	objects := register("davcal_calendar_objects", "The number of calendar objects saved through the API")
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister("davcal_database_count_microsec", latency)
				unregister("davcal_calendars", calendars)
				unregister("davcal_calendar_objects", objects)
				return
			case <-ticker.C:
				sample, err := sampleStore(context.Background(), as.BunDB)
				if err != nil {
					slog.Error("can't collect store metrics", "error", err)
					continue
				}
				latency.Set(float64(sample.Latency.Microseconds()))
				calendars.Set(float64(sample.Calendars))
				objects.Set(float64(sample.Objects))
			}
		}
	}()
}
