package ical

import (
	"time"

	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"
)

// A VEVENT. Create it with Document.AddEvent.
type Event struct {
	entity
}

func newEvent(doc *Document) *Event {
	e := &Event{entity: newEntity(doc, vocab.EntityEvent)}
	e.self = e
	return e
}

// Set DTEND (RFC5545 3.8.2.2)
func (e *Event) SetDateEnd(end time.Time, isFloating bool, params ...Param) error {
	return e.addDate("DTEND", end, isFloating, params)
}

// Set TRANSP (RFC5545 3.8.2.7), OPAQUE or TRANSPARENT
func (e *Event) SetTransparency(transparency string, params ...Param) error {
	if !vocab.Transparency.Has(transparency) {
		return utils.InvalidArgument("this transparency is not allowed for current entity", map[string]any{"transparency": transparency})
	}
	return e.add("TRANSP", []string{transparency}, params)
}
