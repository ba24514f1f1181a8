// Package timezone resolves IANA identifiers to VTIMEZONE definitions that a
// document embeds once per identifier.
package timezone

import (
	"strings"
)

const (
	KindStandard = "STANDARD"
	KindDaylight = "DAYLIGHT"
)

// A STANDARD or DAYLIGHT sub-component. Lines are unfolded content lines
// without BEGIN/END.
type Observance struct {
	Kind  string
	Lines []string
}

// Report whether the observance is defined by a recurrence rule
func (o Observance) HasRule() bool {
	for _, line := range o.Lines {
		if strings.HasPrefix(line, "RRULE:") || strings.HasPrefix(line, "RRULE;") {
			return true
		}
	}
	return false
}

// An immutable VTIMEZONE block
type Definition struct {
	tzid        string
	properties  []string
	observances []Observance
}

// Create a definition. Properties are the content lines of the VTIMEZONE
// itself other than TZID, e.g. `X-LIC-LOCATION:Europe/Berlin`.
func NewDefinition(tzid string, properties []string, observances []Observance) *Definition {
	d := &Definition{
		tzid:       tzid,
		properties: append([]string(nil), properties...),
	}
	for _, o := range observances {
		d.observances = append(d.observances, Observance{Kind: o.Kind, Lines: append([]string(nil), o.Lines...)})
	}
	return d
}

func (d *Definition) TZID() string {
	return d.tzid
}

// Get a copy of the observances
func (d *Definition) Observances() []Observance {
	out := make([]Observance, 0, len(d.observances))
	for _, o := range d.observances {
		out = append(out, Observance{Kind: o.Kind, Lines: append([]string(nil), o.Lines...)})
	}
	return out
}

// Get the unfolded content lines of the whole block, BEGIN and END included
func (d *Definition) Lines() []string {
	lines := make([]string, 0, 3+len(d.properties)+len(d.observances)*6)
	lines = append(lines, "BEGIN:VTIMEZONE", "TZID:"+d.tzid)
	lines = append(lines, d.properties...)
	for _, o := range d.observances {
		lines = append(lines, "BEGIN:"+o.Kind)
		lines = append(lines, o.Lines...)
		lines = append(lines, "END:"+o.Kind)
	}
	return append(lines, "END:VTIMEZONE")
}

// Get a copy where observances without RRULE come first and rule-based ones
// last, each group keeping its relative order. Some clients let the last
// matching observance win.
func (d *Definition) withRulesLast() *Definition {
	fixed := make([]Observance, 0, len(d.observances))
	ruled := make([]Observance, 0, len(d.observances))
	for _, o := range d.observances {
		if o.HasRule() {
			ruled = append(ruled, o)
		} else {
			fixed = append(fixed, o)
		}
	}
	return NewDefinition(d.tzid, d.properties, append(fixed, ruled...))
}
