// The `ical` package authors RFC5545 calendar documents.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
// - RFC6868: https://datatracker.ietf.org/doc/html/rfc6868
//
// # Notes:
//   - A Document is a builder for one VCALENDAR. It is meant for a single
//     writer; share the timezone.Registry instead of the document.
//   - Every setter validates its input and either appends a property or
//     returns an error leaving the component untouched. Blank text values are
//     silently skipped.
//   - Zoned date-times embed the VTIMEZONE of their zone once per document.
//     UTC and floating values never do.
//   - Reading existing documents is not supported.
//
// # Example usage:
//
//	registry := timezone.NewRegistry(timezone.NewTzdataProvider())
//	doc := ical.NewDocument(registry, ical.WithProdID("-//acme//planner//EN"))
//
//	berlin, _ := time.LoadLocation("Europe/Berlin")
//	event := doc.AddEvent()
//	event.SetSummary("Standup")
//	event.SetDateStart(time.Date(2016, 12, 12, 11, 0, 0, 0, berlin), false)
//	event.SetRecurrenceRule(structured.NewRecurrenceRule().
//	    SetFrequency(vocab.FreqWeekly).
//	    SetWeekDaysList([]string{"MO", "WE"}))
//
//	alarm := event.AddAlarm()
//	alarm.SetAction(vocab.ActionDisplay)
//	alarm.SetTriggerBefore(structured.NewDuration().SetMinute(15))
//
//	output := doc.Serialize()
package ical

import (
	"log/slog"
	"strings"
	"time"

	"davcal/src-server/ical/timezone"
	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"
)

const DefaultProdID = "-//davcal//davcal//EN"

// A schedulable component registered in a document: *Event or *Todo
type Component interface {
	Kind() vocab.Entity
	Uid() string
	Properties() []*Property
	Alarms() []*Alarm
	Apply(op string, args []any, params ...Param) error

	toIcal(writer func(string) (int, error)) error
}

// The VCALENDAR aggregate
type Document struct {
	registry *timezone.Registry
	prodID   string
	method   string
	name     string
	now      func() time.Time

	components []Component
	zones      []*timezone.Definition
	zoneIDs    map[string]struct{}
}

type DocumentOption func(*Document)

func WithProdID(prodID string) DocumentOption {
	return func(d *Document) {
		if !utils.IsBlank(prodID) {
			d.prodID = prodID
		}
	}
}

// Set the METHOD property, e.g. `REQUEST` for iTIP messages
func WithMethod(method string) DocumentOption {
	return func(d *Document) {
		d.method = strings.ToUpper(strings.TrimSpace(method))
	}
}

// Set the X-WR-CALNAME property
func WithName(name string) DocumentOption {
	return func(d *Document) {
		d.name = name
	}
}

// Use another clock for DTSTAMP, mostly for tests
func WithClock(now func() time.Time) DocumentOption {
	return func(d *Document) {
		if now != nil {
			d.now = now
		}
	}
}

// Create an empty document. The registry resolves the zones of zoned
// date-times; it may be nil when only UTC or floating values are used.
func NewDocument(registry *timezone.Registry, opts ...DocumentOption) *Document {
	d := &Document{
		registry: registry,
		prodID:   DefaultProdID,
		now:      time.Now,
		zoneIDs:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get the document PRODID
func (d *Document) ProdID() string {
	return d.prodID
}

// Create and register a new event
func (d *Document) AddEvent() *Event {
	e := newEvent(d)
	d.components = append(d.components, e)
	return e
}

// Create and register a new to-do
func (d *Document) AddTodo() *Todo {
	t := newTodo(d)
	d.components = append(d.components, t)
	return t
}

// Get the registered components in insertion order
func (d *Document) Components() []Component {
	return append([]Component(nil), d.components...)
}

// Mint a property bound to nothing. Components use it for every setter;
// callers may use it for properties no setter covers.
func (d *Document) CreateProperty(name string, values []string, params ...Param) (*Property, error) {
	return newProperty(name, values, params)
}

// Report whether a VTIMEZONE for tzid is embedded
func (d *Document) HasTimeZone(tzid string) bool {
	_, ok := d.zoneIDs[tzid]
	return ok
}

// Get the embedded time zone identifiers in embedding order
func (d *Document) TimeZones() []string {
	out := make([]string, 0, len(d.zones))
	for _, z := range d.zones {
		out = append(out, z.TZID())
	}
	return out
}

// Embed the definition of tzid unless it is already there. UTC is never
// embedded.
func (d *Document) EnsureTimeZone(tzid string) error {
	if d.HasTimeZone(tzid) || utils.IsUTCName(tzid) {
		return nil
	}
	def, err := d.registry.Lookup(tzid)
	if err != nil {
		return err
	}
	d.zones = append(d.zones, def)
	d.zoneIDs[tzid] = struct{}{}
	slog.Debug("time zone embedded", "tzid", tzid)
	return nil
}

// Write the document line by line. Lines are folded and CRLF terminated by
// the wrapper, so the writer receives finished text. Example usage:
//
//	var sb strings.Builder
//	if err := doc.ToIcal(sb.WriteString); err != nil {
//	    log.Fatal(err)
//	}
func (d *Document) ToIcal(writer func(string) (int, error)) error {
	write := utils.Split75wrapper(writer)

	header := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + d.prodID,
		"CALSCALE:GREGORIAN",
	}
	if d.method != "" {
		header = append(header, "METHOD:"+d.method)
	}
	if d.name != "" {
		header = append(header, "X-WR-CALNAME:"+utils.EscapeText(d.name))
	}
	for _, line := range header {
		if _, err := write(line); err != nil {
			return err
		}
	}

	for _, zone := range d.zones {
		for _, line := range zone.Lines() {
			if _, err := write(line); err != nil {
				return err
			}
		}
	}

	for _, c := range d.components {
		if err := c.toIcal(write); err != nil {
			return err
		}
	}

	_, err := write("END:VCALENDAR")
	return err
}

// Render the whole document as text
func (d *Document) Serialize() string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = d.ToIcal(sb.WriteString)
	return sb.String()
}
