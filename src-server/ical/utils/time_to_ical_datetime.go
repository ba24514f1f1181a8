package utils

import (
	"time"
)

const (
	LayoutDate     = "20060102"
	LayoutDateTime = "20060102T150405"
	LayoutUTC      = "20060102T150405Z"
)

// Format the date part only: YYYYMMDD
func TimeToIcalDate(t time.Time) string {
	return t.Format(LayoutDate)
}

// Format the wall clock of t without any zone marker: YYYYMMDDTHHMMSS
func TimeToIcalLocal(t time.Time) string {
	return t.Format(LayoutDateTime)
}

// Format t converted to UTC: YYYYMMDDTHHMMSSZ
func TimeToIcalUTC(t time.Time) string {
	return t.UTC().Format(LayoutUTC)
}

// Report whether the location denotes UTC
func IsUTC(loc *time.Location) bool {
	if loc == nil || loc == time.UTC {
		return true
	}
	return IsUTCName(loc.String())
}

// Report whether the location is UTC itself, not an alias such as GMT or
// Etc/UTC. Properties that must be UTC check with this.
func IsStrictUTC(loc *time.Location) bool {
	if loc == nil || loc == time.UTC {
		return true
	}
	if loc.String() != "UTC" {
		return false
	}
	_, offset := time.Date(2000, 1, 1, 0, 0, 0, 0, loc).Zone()
	return offset == 0
}

// Report whether a zone identifier names UTC
func IsUTCName(tzid string) bool {
	switch tzid {
	case "UTC", "GMT", "Z", "Etc/UTC":
		return true
	}
	return false
}

// Get the IANA identifier of a non-UTC location. time.Local has no stable
// identifier and is rejected.
func ZoneID(loc *time.Location) (string, error) {
	if loc == time.Local || loc.String() == "Local" || loc.String() == "" {
		return "", LookupFailure("time zone has no IANA identifier", map[string]any{"zone": loc.String()})
	}
	return loc.String(), nil
}
