package ical

import (
	"strconv"

	"davcal/src-server/ical/structured"
	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"
)

// A VALARM bound to the component that created it
type Alarm struct {
	node
	owner Component
}

func newAlarm(doc *Document, owner Component) *Alarm {
	return &Alarm{node: node{doc: doc, name: "VALARM"}, owner: owner}
}

// Get the component owning the alarm
func (a *Alarm) Owner() Component {
	return a.owner
}

// Set the TRIGGER (RFC5545 3.8.6.3) relative to the start of the owner
func (a *Alarm) SetTrigger(duration *structured.Duration, params ...Param) error {
	return a.addDuration("TRIGGER", duration, params)
}

// Set a TRIGGER that fires the given duration before the start of the owner
func (a *Alarm) SetTriggerBefore(duration *structured.Duration, params ...Param) error {
	if duration == nil {
		return utils.InvalidArgument("duration is required", map[string]any{"property": "TRIGGER"})
	}
	value, err := duration.Render()
	if err != nil {
		return err
	}
	return a.add("TRIGGER", []string{"-" + value}, params)
}

// Add an ATTACH by URI (RFC5545 3.8.1.1)
func (a *Alarm) AddAttachment(uri string, params ...Param) error {
	return a.addText("ATTACH", uri, params)
}

// Set the ACTION (RFC5545 3.8.6.1): AUDIO, DISPLAY or EMAIL
func (a *Alarm) SetAction(action string, params ...Param) error {
	if !vocab.Action.Has(action) {
		return utils.InvalidArgument("this action is not allowed for current entity", map[string]any{"action": action})
	}
	return a.add("ACTION", []string{action}, params)
}

// Set the DESCRIPTION (RFC5545 3.8.1.5)
func (a *Alarm) SetDescription(description string, params ...Param) error {
	return a.addText("DESCRIPTION", description, params)
}

// Set the DURATION between repetitions (RFC5545 3.8.2.5)
func (a *Alarm) SetDuration(duration *structured.Duration, params ...Param) error {
	return a.addDuration("DURATION", duration, params)
}

// Set the REPEAT count (RFC5545 3.8.6.2), greater than 0
func (a *Alarm) SetRepeatCount(count int, params ...Param) error {
	if count <= 0 {
		return utils.OutOfRange("repeat count should be greater than 0", map[string]any{"count": count})
	}
	return a.add("REPEAT", []string{strconv.Itoa(count)}, params)
}

// Add an ATTENDEE (RFC5545 3.8.4.1) to notify. Alarms accept attendees of
// any target kind.
func (a *Alarm) AddAttendee(attendee *structured.Attendee) error {
	return a.addAttendee(attendee)
}

// Set the SUMMARY (RFC5545 3.8.1.12)
func (a *Alarm) SetSummary(summary string, params ...Param) error {
	return a.addText("SUMMARY", summary, params)
}
