package route

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"davcal/src-server/blueprint"
	"davcal/src-server/caldav"
	"davcal/src-server/ical"
	"davcal/src-server/metric"
	"davcal/src-server/model"
	"davcal/src-server/utils"

	"github.com/google/uuid"
)

func Calendar(muxer *http.ServeMux, as *utils.AppState) {
	type OneCalendarRespBody struct {
		URL         string `json:"url"`
		DisplayName string `json:"displayName"`
		Description string `json:"description,omitempty"`
	}

	type SaveObjectReqBody struct {
		CalendarURL string          `json:"calendarUrl"`
		FileName    string          `json:"fileName,omitempty"`
		ETag        string          `json:"eTag,omitempty"`
		Blueprint   json.RawMessage `json:"blueprint"`
	}

	type OneObjectRespBody struct {
		ID          string `json:"id"`
		CalendarURL string `json:"calendarUrl"`
		FileName    string `json:"fileName"`
		ETag        string `json:"eTag,omitempty"`
		Summary     string `json:"summary,omitempty"`
		CreatedAt   int64  `json:"createdAt"`
		UpdatedAt   int64  `json:"updatedAt"`
	}

	toObjectResp := func(o *model.CalendarObject) OneObjectRespBody {
		resp := OneObjectRespBody{
			ID:        o.ID,
			FileName:  o.FileName,
			ETag:      o.ETag,
			Summary:   o.Summary,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		}
		if o.Calendar != nil {
			resp.CalendarURL = o.Calendar.URL
		}
		return resp
	}

	requireCaldav := func(next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
		return AuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
			if as.Caldav == nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("CalDAV is not configured"))
				return
			}
			next(w, r)
		})
	}

	// list the calendars of the configured principal
	muxer.HandleFunc("GET /caldav/calendars", requireCaldav(func(w http.ResponseWriter, r *http.Request) {
		principal, err := caldav.NewServer(as.Caldav).Principal(r.Context())
		if err != nil {
			writeError(w, fmt.Errorf("%w: %w", caldav.ErrUnexpectedStatus, err))
			return
		}
		calendars, err := principal.Calendars(r.Context())
		if err != nil {
			writeError(w, fmt.Errorf("%w: %w", caldav.ErrUnexpectedStatus, err))
			return
		}
		respBody := make([]OneCalendarRespBody, 0, len(calendars))
		for _, cal := range calendars {
			respBody = append(respBody, OneCalendarRespBody{
				URL:         cal.URL(),
				DisplayName: cal.DisplayName(),
				Description: cal.Description(),
			})
		}
		writeJSON(w, http.StatusOK, respBody)
	}))

	// render a blueprint, PUT it to a calendar and remember it
	muxer.HandleFunc("POST /caldav/objects", requireCaldav(func(w http.ResponseWriter, r *http.Request) {
		var reqBody SaveObjectReqBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.CalendarURL == "" || len(bytes.TrimSpace(reqBody.Blueprint)) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Please provide a calendar url and a blueprint"))
			return
		}

		bp, err := blueprint.ParseJSON(reqBody.Blueprint)
		if err != nil {
			writeError(w, err)
			return
		}
		doc, err := as.Builder.Build(bp)
		if err != nil {
			writeError(w, err)
			return
		}
		object, err := saveObject(r.Context(), as, doc, reqBody.CalendarURL, reqBody.FileName, reqBody.ETag)
		if err != nil {
			writeError(w, err)
			return
		}
		metric.DocumentsRendered.WithLabelValues("caldav").Inc()
		as.Notify(fmt.Sprintf("Saved %q to %s", object.Summary, reqBody.CalendarURL))
		writeJSON(w, http.StatusCreated, toObjectResp(object))
	}))

	// list the stored objects
	muxer.HandleFunc("GET /caldav/objects", AuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		var objects []*model.CalendarObject
		if err := as.DBRead(func() error {
			var err error
			objects, err = model.ListCalendarObjects(r.Context(), as.BunDB)
			return err
		}); err != nil {
			writeError(w, err)
			return
		}
		respBody := make([]OneObjectRespBody, 0, len(objects))
		for _, o := range objects {
			respBody = append(respBody, toObjectResp(o))
		}
		writeJSON(w, http.StatusOK, respBody)
	}))

	// delete the remote object and its record
	muxer.HandleFunc("DELETE /caldav/objects/{id}", requireCaldav(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var object *model.CalendarObject
		if err := as.DBRead(func() error {
			var err error
			object, err = model.GetCalendarObject(r.Context(), as.BunDB, id)
			return err
		}); err != nil {
			writeError(w, err)
			return
		}
		if object.Calendar == nil {
			writeError(w, fmt.Errorf("calendar of object %s: %w", id, sql.ErrNoRows))
			return
		}

		cal, err := caldav.NewCalendar(as.Caldav, object.Calendar.URL, object.Calendar.DisplayName)
		if err != nil {
			writeError(w, err)
			return
		}
		// an object already gone on the server only needs its record removed
		if resp, err := cal.Delete(r.Context(), object.FileName); err != nil &&
			!(errors.Is(err, caldav.ErrUnexpectedStatus) && resp != nil && resp.Status == http.StatusNotFound) {
			writeError(w, err)
			return
		}
		if err := as.DBWrite(func() error {
			return model.DeleteCalendarObject(r.Context(), as.BunDB, id)
		}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func saveObject(ctx context.Context, as *utils.AppState, doc *ical.Document, calendarURL, fileName, eTag string) (*model.CalendarObject, error) {
	components := doc.Components()
	if fileName == "" {
		if len(components) > 0 {
			fileName = components[0].Uid() + ".ics"
		} else {
			fileName = uuid.NewString() + ".ics"
		}
	}

	cal, err := caldav.NewCalendar(as.Caldav, calendarURL, "")
	if err != nil {
		return nil, err
	}
	resp, err := cal.Save(ctx, doc, fileName, eTag)
	if err != nil {
		return nil, err
	}

	// calendars are normally known from the scheduled sync; remember new ones
	var calendarModel *model.Calendar
	if err := as.DBRead(func() error {
		stored, err := model.CalendarByURL(ctx, as.BunDB, calendarURL)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		calendarModel = stored
		return err
	}); err != nil {
		return nil, err
	}
	if calendarModel == nil {
		calendarModel = &model.Calendar{ID: uuid.NewString(), URL: calendarURL}
		if err := as.DBWrite(func() error { return calendarModel.Upsert(ctx, as.BunDB) }); err != nil {
			return nil, err
		}
	}

	object := &model.CalendarObject{
		ID:         uuid.NewString(),
		CalendarID: calendarModel.ID,
		FileName:   fileName,
		ETag:       resp.Header.Get("ETag"),
		Summary:    summaryOf(components),
		Body:       doc.Serialize(),
		Calendar:   calendarModel,
	}
	if err := as.DBWrite(func() error { return object.Upsert(ctx, as.BunDB) }); err != nil {
		return nil, err
	}
	return object, nil
}

func summaryOf(components []ical.Component) string {
	for _, c := range components {
		for _, p := range c.Properties() {
			if p.Name() == "SUMMARY" {
				return p.Value()
			}
		}
	}
	return ""
}
