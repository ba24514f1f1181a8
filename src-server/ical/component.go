package ical

import (
	"math"
	"strconv"
	"time"

	"davcal/src-server/ical/structured"
	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"

	"github.com/google/uuid"
)

// Properties and sub-components of one BEGIN/END block
type node struct {
	doc    *Document
	name   string
	props  []*Property
	alarms []*Alarm
}

// Mint a property and append it. Nothing is appended on error.
func (n *node) add(name string, values []string, params []Param) error {
	prop, err := n.doc.CreateProperty(name, values, params...)
	if err != nil {
		return err
	}
	n.props = append(n.props, prop)
	return nil
}

func (n *node) addText(name, value string, params []Param) error {
	if utils.IsBlank(value) {
		return nil
	}
	return n.add(name, []string{value}, params)
}

func (n *node) addList(name string, values []string, params []Param) error {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if !utils.IsBlank(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return n.add(name, kept, params)
}

func (n *node) addDuration(name string, duration *structured.Duration, params []Param) error {
	if duration == nil {
		return utils.InvalidArgument("duration is required", map[string]any{"property": name})
	}
	value, err := duration.Render()
	if err != nil {
		return err
	}
	return n.add(name, []string{value}, params)
}

func (n *node) addAttendee(attendee *structured.Attendee) error {
	if attendee == nil {
		return utils.InvalidArgument("attendee is required", nil)
	}
	address, params, err := attendee.Render()
	if err != nil {
		return err
	}
	return n.add("ATTENDEE", []string{address}, params)
}

// Find the first property with the given name
func (n *node) find(name string) *Property {
	for _, p := range n.props {
		if p.name == name {
			return p
		}
	}
	return nil
}

// Get the properties in insertion order
func (n *node) Properties() []*Property {
	return append([]*Property(nil), n.props...)
}

// Get the alarms in insertion order
func (n *node) Alarms() []*Alarm {
	return append([]*Alarm(nil), n.alarms...)
}

func (n *node) toIcal(writer func(string) (int, error)) error {
	if _, err := writer("BEGIN:" + n.name); err != nil {
		return err
	}
	for _, p := range n.props {
		if _, err := writer(p.String()); err != nil {
			return err
		}
	}
	for _, a := range n.alarms {
		if err := a.toIcal(writer); err != nil {
			return err
		}
	}
	_, err := writer("END:" + n.name)
	return err
}

// The property contract shared by events and to-dos
type entity struct {
	node
	kind vocab.Entity
	self Component
}

func newEntity(doc *Document, kind vocab.Entity) entity {
	e := entity{node: node{doc: doc, name: string(kind)}, kind: kind}
	e.props = append(e.props,
		&Property{name: "UID", values: []string{uuid.NewString()}},
		&Property{name: "DTSTAMP", values: []string{utils.TimeToIcalUTC(doc.now())}},
	)
	return e
}

// Get the component kind, VEVENT or VTODO
func (e *entity) Kind() vocab.Entity {
	return e.kind
}

// Get the current UID
func (e *entity) Uid() string {
	if p := e.find("UID"); p != nil {
		return p.Value()
	}
	return ""
}

// Set the UID (RFC5545 3.8.4.7). The existing UID is replaced in place.
func (e *entity) SetUid(uid string, params ...Param) error {
	if utils.IsBlank(uid) {
		return nil
	}
	if p := e.find("UID"); p != nil {
		p.SetValue(uid)
		return nil
	}
	return e.add("UID", []string{uid}, params)
}

// Set the SUMMARY (RFC5545 3.8.1.12)
func (e *entity) SetSummary(summary string, params ...Param) error {
	return e.addText("SUMMARY", summary, params)
}

// Set the DESCRIPTION (RFC5545 3.8.1.5)
func (e *entity) SetDescription(description string, params ...Param) error {
	return e.addText("DESCRIPTION", description, params)
}

// Set a COMMENT (RFC5545 3.8.1.4)
func (e *entity) SetComment(comment string, params ...Param) error {
	return e.addText("COMMENT", comment, params)
}

// Add an ATTACH by URI (RFC5545 3.8.1.1)
func (e *entity) AddAttachment(uri string, params ...Param) error {
	return e.addText("ATTACH", uri, params)
}

// Add CATEGORIES (RFC5545 3.8.1.2), rendered comma-joined
func (e *entity) AddCategories(categories []string, params ...Param) error {
	return e.addList("CATEGORIES", categories, params)
}

// Set the CLASS (RFC5545 3.8.1.3), e.g. PUBLIC, PRIVATE or CONFIDENTIAL
func (e *entity) SetClass(class string, params ...Param) error {
	return e.addText("CLASS", class, params)
}

// Set the GEO position (RFC5545 3.8.1.6) from latitude and longitude
func (e *entity) SetGeo(latLong []float64, params ...Param) error {
	if len(latLong) != 2 {
		return utils.InvalidArgument("geo position needs exactly latitude and longitude", map[string]any{"values": len(latLong)})
	}
	for _, v := range latLong {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return utils.InvalidArgument("geo position must be finite numbers", map[string]any{"value": v})
		}
	}
	value := strconv.FormatFloat(latLong[0], 'f', -1, 64) + ";" + strconv.FormatFloat(latLong[1], 'f', -1, 64)
	return e.add("GEO", []string{value}, params)
}

// Set the LOCATION (RFC5545 3.8.1.7)
func (e *entity) SetLocation(location string, params ...Param) error {
	return e.addText("LOCATION", location, params)
}

// Set the PRIORITY (RFC5545 3.8.1.9): 0 undefined, 1 highest, 9 lowest
func (e *entity) SetPriority(priority int, params ...Param) error {
	if priority < 0 || priority > 9 {
		return utils.OutOfRange("priority should be between 0 and 9", map[string]any{"priority": priority})
	}
	return e.add("PRIORITY", []string{strconv.Itoa(priority)}, params)
}

// Add RESOURCES (RFC5545 3.8.1.10), rendered comma-joined
func (e *entity) AddResources(resources []string, params ...Param) error {
	return e.addList("RESOURCES", resources, params)
}

// Set the STATUS (RFC5545 3.8.1.11). Events and to-dos have different
// vocabularies.
func (e *entity) SetStatus(status string, params ...Param) error {
	if !vocab.StatusFor(e.kind).Has(status) {
		return utils.InvalidArgument("this status is not allowed for current entity", map[string]any{
			"status": status,
			"entity": e.kind,
		})
	}
	return e.add("STATUS", []string{status}, params)
}

// Set DTSTART (RFC5545 3.8.2.4). Pass `VALUE=DATE` to keep the date only.
func (e *entity) SetDateStart(start time.Time, isFloating bool, params ...Param) error {
	return e.addDate("DTSTART", start, isFloating, params)
}

// Set the DURATION (RFC5545 3.8.2.5)
func (e *entity) SetDuration(duration *structured.Duration, params ...Param) error {
	return e.addDuration("DURATION", duration, params)
}

// Set RELATED-TO (RFC5545 3.8.4.5). Use the RELTYPE parameter for the kind
// of relation.
func (e *entity) SetRelatedTo(uid string, params ...Param) error {
	return e.addText("RELATED-TO", uid, params)
}

// Set the URL (RFC5545 3.8.4.6)
func (e *entity) SetUrl(url string, params ...Param) error {
	return e.addText("URL", url, params)
}

// Add an ATTENDEE (RFC5545 3.8.4.1). The attendee must target this kind of
// component.
func (e *entity) AddAttendee(attendee *structured.Attendee) error {
	if attendee != nil && attendee.Entity() != e.kind {
		return utils.InvalidArgument("type of entity and target entity type of attendee must match", map[string]any{
			"entity":   e.kind,
			"attendee": attendee.Entity(),
		})
	}
	return e.addAttendee(attendee)
}

// Set the CONTACT (RFC5545 3.8.4.2)
func (e *entity) SetContact(contact *structured.Contact) error {
	if contact == nil {
		return utils.InvalidArgument("contact is required", nil)
	}
	text, params, err := contact.Render()
	if err != nil {
		return err
	}
	return e.add("CONTACT", []string{text}, params)
}

// Set the ORGANIZER (RFC5545 3.8.4.3)
func (e *entity) SetOrganizer(organizer *structured.Organizer) error {
	if organizer == nil {
		return utils.InvalidArgument("organizer is required", nil)
	}
	address, params, err := organizer.Render()
	if err != nil {
		return err
	}
	return e.add("ORGANIZER", []string{address}, params)
}

// Set CREATED (RFC5545 3.8.7.1), which must be UTC
func (e *entity) SetDateCreated(created time.Time, params ...Param) error {
	return e.addUTC("CREATED", created, params)
}

// Set LAST-MODIFIED (RFC5545 3.8.7.3), which must be UTC
func (e *entity) SetDateLastModified(lastModified time.Time, params ...Param) error {
	return e.addUTC("LAST-MODIFIED", lastModified, params)
}

// Set the SEQUENCE (RFC5545 3.8.7.4)
func (e *entity) SetSequence(sequence int, params ...Param) error {
	return e.add("SEQUENCE", []string{strconv.Itoa(sequence)}, params)
}

// Set RECURRENCE-ID (RFC5545 3.8.4.4) from an already formatted value
func (e *entity) SetRecurrenceId(id string, params ...Param) error {
	return e.addText("RECURRENCE-ID", id, params)
}

// Add EXDATE values (RFC5545 3.8.5.1). All dates are expressed in the zone
// of the first one.
func (e *entity) AddExceptionDates(dates []time.Time, params ...Param) error {
	return e.addDates("EXDATE", dates, params)
}

// Add RDATE values (RFC5545 3.8.5.2). All dates are expressed in the zone of
// the first one. Periods go through AddRecurrencePeriods.
func (e *entity) AddRecurrenceDates(dates []time.Time, params ...Param) error {
	if utils.HasParamValue(params, "VALUE", "PERIOD") {
		return utils.InvalidArgument("use AddRecurrencePeriods to set periods", nil)
	}
	return e.addDates("RDATE", dates, params)
}

// Add RDATE period values (RFC5545 3.8.5.2), always with `VALUE=PERIOD`
func (e *entity) AddRecurrencePeriods(periods []*structured.Period, params ...Param) error {
	values := make([]string, 0, len(periods))
	for i, period := range periods {
		if period == nil {
			return utils.InvalidArgument("all values of periods must be periods", map[string]any{"index": i})
		}
		value, err := period.Render()
		if err != nil {
			return err
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil
	}
	params = utils.SetParam(append([]Param(nil), params...), "VALUE", "PERIOD")
	return e.add("RDATE", values, params)
}

// Set the RRULE (RFC5545 3.8.5.3)
func (e *entity) SetRecurrenceRule(rule *structured.RecurrenceRule) error {
	if rule == nil {
		return utils.InvalidArgument("recurrence rule is required", nil)
	}
	value, err := rule.Render()
	if err != nil {
		return err
	}
	return e.add("RRULE", []string{value}, nil)
}

// Add a VALARM (RFC5545 3.6.6) owned by this component
func (e *entity) AddAlarm() *Alarm {
	a := newAlarm(e.doc, e.self)
	e.alarms = append(e.alarms, a)
	return a
}
