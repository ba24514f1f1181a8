package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// A document saved to a remote calendar
type CalendarObject struct {
	bun.BaseModel `bun:"table:calendar_objects"`

	ID         string `bun:"id,pk"`                                    // required
	CalendarID string `bun:"calendar_id,notnull,unique:calendar_file"` // required
	FileName   string `bun:"file_name,notnull,unique:calendar_file"`   // required
	ETag       string `bun:"etag"`
	Summary    string `bun:"summary"`
	Body       string `bun:"body,notnull"`
	CreatedAt  int64  `bun:"created_at"`
	UpdatedAt  int64  `bun:"updated_at"`

	Calendar *Calendar `bun:"rel:belongs-to,join:calendar_id=id"`
}

// Insert or refresh the object, keyed by its calendar and file name. The
// stored ID and creation time are kept when the file is already known.
func (o *CalendarObject) Upsert(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return fmt.Errorf("(*CalendarObject).Upsert: db is nil")
	}

	switch {
	case o.ID == "":
		return fmt.Errorf("(*CalendarObject).Upsert: object id is blank")
	case o.CalendarID == "":
		return fmt.Errorf("(*CalendarObject).Upsert: calendar id is blank")
	case o.FileName == "":
		return fmt.Errorf("(*CalendarObject).Upsert: file name is blank")
	}

	now := time.Now().Unix()
	if o.CreatedAt == 0 {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	if _, err := db.NewInsert().
		Model(o).
		On("CONFLICT (calendar_id, file_name) DO UPDATE").
		Set("etag = EXCLUDED.etag").
		Set("summary = EXCLUDED.summary").
		Set("body = EXCLUDED.body").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id, created_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*CalendarObject).Upsert: can't upsert calendar object: %w", err)
	}
	return nil
}

// List stored objects with their calendar, newest first
func ListCalendarObjects(ctx context.Context, db bun.IDB) ([]*CalendarObject, error) {
	objects := make([]*CalendarObject, 0)
	if err := db.NewSelect().
		Model(&objects).
		Relation("Calendar").
		Order("calendar_object.created_at DESC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListCalendarObjects: %w", err)
	}
	return objects, nil
}

func GetCalendarObject(ctx context.Context, db bun.IDB, id string) (*CalendarObject, error) {
	object := new(CalendarObject)
	if err := db.NewSelect().
		Model(object).
		Relation("Calendar").
		Where("calendar_object.id = ?", id).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GetCalendarObject: %w", err)
	}
	return object, nil
}

func DeleteCalendarObject(ctx context.Context, db bun.IDB, id string) error {
	if _, err := db.NewDelete().
		Model((*CalendarObject)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteCalendarObject: %w", err)
	}
	return nil
}
