package model_test

import (
	"context"
	"database/sql"
	"testing"

	"davcal/src-server/model"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })
	if err := model.CreateSchema(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	// running it twice must be harmless
	if err := model.CreateSchema(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	return bundb
}

func TestCalendarObject(t *testing.T) {
	ctx := context.Background()
	bundb := newDB(t)

	calendarModel := model.Calendar{
		ID:          uuid.NewString(),
		URL:         "/dav/calendars/jane/work/",
		DisplayName: "Work",
	}
	if err := calendarModel.Upsert(ctx, bundb); err != nil {
		t.Fatal(err)
	}

	// case: upsert by url keeps the stored id
	func() {
		again := model.Calendar{
			ID:          uuid.NewString(),
			URL:         calendarModel.URL,
			DisplayName: "Work (renamed)",
		}
		if err := again.Upsert(ctx, bundb); err != nil {
			t.Fatal(err)
		}
		stored, err := model.CalendarByURL(ctx, bundb, calendarModel.URL)
		if err != nil {
			t.Fatal(err)
		}
		if stored.ID != calendarModel.ID {
			t.Errorf("expected id %s, got %s", calendarModel.ID, stored.ID)
		}
		if stored.DisplayName != "Work (renamed)" {
			t.Errorf("expected display name to be refreshed, got %q", stored.DisplayName)
		}
	}()

	objectModel := model.CalendarObject{
		ID:         uuid.NewString(),
		CalendarID: calendarModel.ID,
		FileName:   "standup.ics",
		ETag:       `"1"`,
		Summary:    "Standup",
		Body:       "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
	}
	if err := objectModel.Upsert(ctx, bundb); err != nil {
		t.Fatal(err)
	}

	// case: object is listed with its calendar
	func() {
		objects, err := model.ListCalendarObjects(ctx, bundb)
		if err != nil {
			t.Fatal(err)
		}
		if len(objects) != 1 {
			t.Fatalf("expected 1 object, got %d", len(objects))
		}
		if objects[0].Calendar == nil || objects[0].Calendar.URL != calendarModel.URL {
			t.Error("calendar relation not loaded")
		}
	}()

	// case: upsert updates the etag
	func() {
		objectModel.ETag = `"2"`
		if err := objectModel.Upsert(ctx, bundb); err != nil {
			t.Fatal(err)
		}
		stored, err := model.GetCalendarObject(ctx, bundb, objectModel.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.ETag != `"2"` {
			t.Errorf("expected updated etag, got %q", stored.ETag)
		}
	}()

	// case: saving the same file under a new id keeps one row
	func() {
		again := model.CalendarObject{
			ID:         uuid.NewString(),
			CalendarID: calendarModel.ID,
			FileName:   objectModel.FileName,
			ETag:       `"3"`,
			Body:       "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		}
		if err := again.Upsert(ctx, bundb); err != nil {
			t.Fatal(err)
		}
		if again.ID != objectModel.ID {
			t.Errorf("expected stored id %s, got %s", objectModel.ID, again.ID)
		}
		objects, err := model.ListCalendarObjects(ctx, bundb)
		if err != nil {
			t.Fatal(err)
		}
		if len(objects) != 1 || objects[0].ETag != `"3"` {
			t.Errorf("expected a single refreshed object, got %d", len(objects))
		}
	}()

	// case: validation
	func() {
		if err := (&model.CalendarObject{ID: uuid.NewString()}).Upsert(ctx, bundb); err == nil {
			t.Error("expected missing calendar id to fail")
		}
		if err := (&model.Calendar{ID: uuid.NewString()}).Upsert(ctx, bundb); err == nil {
			t.Error("expected missing url to fail")
		}
	}()

	// case: deleting the calendar removes its objects
	func() {
		if _, err := bundb.NewDelete().
			Model((*model.Calendar)(nil)).
			Where("id = ?", calendarModel.ID).
			Exec(context.WithValue(ctx, model.DeletedCalendarIDsCtxKey, calendarModel.ID)); err != nil {
			t.Fatal(err)
		}
		if _, err := model.GetCalendarObject(ctx, bundb, objectModel.ID); err == nil {
			t.Error("expected object to be gone")
		}
	}()
}

func TestDeleteCalendarObject(t *testing.T) {
	ctx := context.Background()
	bundb := newDB(t)
	object := model.CalendarObject{
		ID:         uuid.NewString(),
		CalendarID: uuid.NewString(),
		FileName:   "a.ics",
		Body:       "x",
	}
	if err := object.Upsert(ctx, bundb); err != nil {
		t.Fatal(err)
	}
	if err := model.DeleteCalendarObject(ctx, bundb, object.ID); err != nil {
		t.Fatal(err)
	}
	objects, err := model.ListCalendarObjects(ctx, bundb)
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != 0 {
		t.Errorf("expected no objects, got %d", len(objects))
	}
}
