package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"davcal/src-server/utils"

	"github.com/robfig/cron/v3"
)

// Start the periodic jobs. The returned cron is stopped on graceful
// shutdown. Without a CalDAV endpoint nothing is scheduled and nil is
// returned.
func Start(as *utils.AppState) *cron.Cron {
	if as.Caldav == nil {
		return nil
	}
	c := cron.New()
	checker := &connectionChecker{as: as}
	if _, err := c.AddFunc(as.Config.GetCaldavCheckSchedule(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if checker.Check(ctx) {
			if err := SyncCalendars(ctx, as); err != nil {
				slog.Warn("can't sync calendars", "error", err)
			}
		}
	}); err != nil {
		slog.Error("can't schedule caldav connection check", "error", err)
		return nil
	}
	c.Start()
	slog.Info("caldav connection check scheduled", "schedule", as.Config.GetCaldavCheckSchedule())

	go func() {
		<-*as.CreateGracefulShutdownChan()
		<-c.Stop().Done()
		slog.Debug("scheduler stopped")
	}()
	return c
}

// Tracks the CalDAV connection state and reports changes
type connectionChecker struct {
	as *utils.AppState

	mu     sync.Mutex
	known  bool
	lastUp bool
}

func (c *connectionChecker) Check(ctx context.Context) bool {
	up := c.as.Caldav.IsValidConnection(ctx)
	utils.Send(c.as.MetricChans.CaldavUp, up)

	c.mu.Lock()
	changed := !c.known || c.lastUp != up
	c.known, c.lastUp = true, up
	c.mu.Unlock()

	if changed {
		slog.Info("caldav connection state", "endpoint", c.as.Caldav.BaseURL(), "up", up)
		if up {
			c.as.Notify("CalDAV server " + c.as.Caldav.BaseURL() + " is reachable")
		} else {
			c.as.Notify("CalDAV server " + c.as.Caldav.BaseURL() + " is unreachable")
		}
	}
	return up
}
