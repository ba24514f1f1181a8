package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type DeletedCalendarIDsCtxKeyType string

const DeletedCalendarIDsCtxKey DeletedCalendarIDsCtxKeyType = "calendar-id"

// A remote calendar collection found through discovery
type Calendar struct {
	bun.BaseModel `bun:"table:calendars"`

	ID          string `bun:"id,pk"`              // required
	URL         string `bun:"url,notnull,unique"` // required
	DisplayName string `bun:"display_name,notnull"`
	Description string `bun:"description"`
	LastSeen    int64  `bun:"last_seen"`

	Objects []*CalendarObject `bun:"rel:has-many,join:id=calendar_id"`
}

var _ bun.AfterDeleteHook = (*Calendar)(nil)

// Remove the stored objects of the deleted calendars. The ids are passed in
// the context under DeletedCalendarIDsCtxKey.
func (c *Calendar) AfterDelete(ctx context.Context, query *bun.DeleteQuery) error {
	if query.DB() == nil {
		return fmt.Errorf("(*Calendar).AfterDelete: db is nil")
	}

	ids := make([]string, 0)
	switch deleted := ctx.Value(DeletedCalendarIDsCtxKey).(type) {
	case string:
		if deleted == "" {
			return fmt.Errorf("(*Calendar).AfterDelete: deleted calendar id is blank")
		}
		ids = append(ids, deleted)
	case []string:
		if len(deleted) == 0 {
			return nil
		}
		ids = append(ids, deleted...)
	case nil:
		return fmt.Errorf("(*Calendar).AfterDelete: calendar id is nil")
	default:
		return fmt.Errorf("(*Calendar).AfterDelete: wrong deleted calendar id type | type=%T", deleted)
	}

	if _, err := query.DB().NewDelete().
		Model((*CalendarObject)(nil)).
		Where("calendar_id IN (?)", bun.In(ids)).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Calendar).AfterDelete: can't delete calendar objects: %w", err)
	}
	return nil
}

// Insert or refresh the calendar, keyed by its URL. The stored ID is kept
// when the URL is already known.
func (c *Calendar) Upsert(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return fmt.Errorf("(*Calendar).Upsert: db is nil")
	}

	switch {
	case c.ID == "":
		return fmt.Errorf("(*Calendar).Upsert: calendar id is blank")
	case c.URL == "":
		return fmt.Errorf("(*Calendar).Upsert: calendar url is blank")
	}

	if _, err := db.NewInsert().
		Model(c).
		On("CONFLICT (url) DO UPDATE").
		Set("display_name = EXCLUDED.display_name").
		Set("description = EXCLUDED.description").
		Set("last_seen = EXCLUDED.last_seen").
		Returning("id").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Calendar).Upsert: can't upsert calendar: %w", err)
	}
	return nil
}

// Find a calendar by URL
func CalendarByURL(ctx context.Context, db bun.IDB, url string) (*Calendar, error) {
	cal := new(Calendar)
	if err := db.NewSelect().
		Model(cal).
		Where("url = ?", url).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("CalendarByURL: %w", err)
	}
	return cal, nil
}
