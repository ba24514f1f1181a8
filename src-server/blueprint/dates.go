package blueprint

import (
	"strings"
	"time"

	"davcal/src-server/ical/utils"
)

// Layouts carrying their own offset
var absoluteLayouts = []string{
	time.RFC3339,
	"20060102T150405Z",
}

// Layouts read in the target location
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"20060102T150405",
	"2006-01-02",
	"20060102",
}

// Resolve a date argument. TZID wins over both the builder location and
// any offset in the text. Text with an offset and no TZID becomes UTC.
func (b *Builder) date(spec dateSpec) (time.Time, error) {
	text := strings.TrimSpace(spec.Date)
	if text == "" {
		return time.Time{}, utils.InvalidArgument("date is required", nil)
	}
	loc, err := b.zone(spec.TZID)
	if err != nil {
		return time.Time{}, err
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			if spec.TZID != "" {
				return t.In(loc), nil
			}
			return t.UTC(), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t, nil
		}
	}

	r, err := b.when.Parse(text, b.now().In(loc))
	if err != nil || r == nil {
		return time.Time{}, utils.InvalidArgument("can't understand date", map[string]any{"date": text})
	}
	return r.Time.In(loc), nil
}

func (b *Builder) zone(tzid string) (*time.Location, error) {
	tzid = strings.TrimSpace(tzid)
	switch {
	case tzid == "":
		return b.location, nil
	case utils.IsUTCName(tzid):
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil || loc == time.Local {
		return nil, utils.LookupFailure("unknown time zone", map[string]any{"tzid": tzid})
	}
	return loc, nil
}
