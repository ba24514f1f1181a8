package scheduler

import (
	"context"
	"fmt"
	"time"

	"davcal/src-server/caldav"
	"davcal/src-server/model"
	"davcal/src-server/utils"

	"github.com/google/uuid"
)

// Discover the calendars of the configured principal and store them
func SyncCalendars(ctx context.Context, as *utils.AppState) error {
	if as.Caldav == nil {
		return fmt.Errorf("SyncCalendars: caldav is not configured")
	}
	principal, err := caldav.NewServer(as.Caldav).Principal(ctx)
	if err != nil {
		return fmt.Errorf("SyncCalendars: %w", err)
	}
	calendars, err := principal.Calendars(ctx)
	if err != nil {
		return fmt.Errorf("SyncCalendars: %w", err)
	}

	now := time.Now().Unix()
	for _, cal := range calendars {
		calendarModel := model.Calendar{
			ID:          uuid.NewString(),
			URL:         cal.URL(),
			DisplayName: cal.DisplayName(),
			Description: cal.Description(),
			LastSeen:    now,
		}
		if err := as.DBWrite(func() error {
			return calendarModel.Upsert(ctx, as.BunDB)
		}); err != nil {
			return fmt.Errorf("SyncCalendars: %w", err)
		}
	}
	return nil
}
