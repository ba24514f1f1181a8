package route

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"davcal/src-server/blueprint"
	icalutils "davcal/src-server/ical/utils"
	"davcal/src-server/metric"
	"davcal/src-server/utils"

	"github.com/xyedo/rrule"
)

const maxOccurrences = 1000

func Ical(muxer *http.ServeMux, as *utils.AppState) {
	// render a blueprint (JSON or YAML by Content-Type) as text/calendar
	muxer.HandleFunc("POST /ical/render", AuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			w.Write([]byte("Request body is too large"))
			return
		}
		bp, err := blueprint.Parse(data, r.Header.Get("Content-Type"))
		if err != nil {
			writeError(w, err)
			return
		}
		doc, err := as.Builder.Build(bp)
		if err != nil {
			writeError(w, err)
			return
		}
		metric.DocumentsRendered.WithLabelValues("render").Inc()

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := doc.ToIcal(func(s string) (int, error) { return io.WriteString(w, s) }); err != nil {
			slog.Warn("can't write to response", "where", "route/ical.go", "err", err)
		}
	}))

	type OccurrencesReqBody struct {
		RRule   string `json:"rrule"`
		DTStart string `json:"dtstart"`
		TZID    string `json:"tzid"`
		Count   int    `json:"count"`
	}

	// preview the first occurrences of a recurrence rule
	muxer.HandleFunc("POST /ical/occurrences", AuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		var reqBody OccurrencesReqBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		occurrences, err := Occurrences(reqBody.RRule, reqBody.DTStart, reqBody.TZID, reqBody.Count, as.Config.GetLocation())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, occurrences)
	}))
}

// Expand a rule from dtstart. dtstart is RFC3339 or `20060102T150405` read
// in tzid (or loc when tzid is empty). count is capped at 1000 and defaults
// to 10.
func Occurrences(rule, dtstart, tzid string, count int, loc *time.Location) ([]time.Time, error) {
	if rule == "" || dtstart == "" {
		return nil, icalutils.InvalidArgument("rrule and dtstart are required", nil)
	}
	switch {
	case count <= 0:
		count = 10
	case count > maxOccurrences:
		count = maxOccurrences
	}
	if tzid != "" {
		var err error
		if loc, err = time.LoadLocation(tzid); err != nil || loc == time.Local {
			return nil, icalutils.LookupFailure("unknown time zone", map[string]any{"tzid": tzid})
		}
	}

	start, err := time.Parse(time.RFC3339, dtstart)
	if err != nil {
		if start, err = time.ParseInLocation("20060102T150405", dtstart, loc); err != nil {
			return nil, icalutils.InvalidArgument("invalid dtstart", map[string]any{"dtstart": dtstart})
		}
	} else {
		start = start.In(loc)
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, icalutils.InvalidArgument("invalid rrule", map[string]any{"error": err.Error()})
	}
	r.DTStart(start)

	out := make([]time.Time, 0, count)
	next := r.Iterator()
	for len(out) < count {
		t, ok := next()
		if !ok {
			break
		}
		out = append(out, t)
	}
	return out, nil
}
