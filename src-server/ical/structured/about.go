// Package `structured` contains the compound iCalendar values that are not a
// plain `key:value` pair: durations, periods, recurrence rules and the
// calendar-address descriptors (`ATTENDEE`, `ORGANIZER`, `CONTACT`) that
// carry their own parameters.
//
// Every value is a chained builder. Setters record the first validation
// error and the builder reports it from `Render()`, so a chain can be
// written in one expression:
//
//	rule, err := structured.NewRecurrenceRule().
//	    SetInterval(2).
//	    SetCount(10).
//	    SetFrequency(vocab.FreqHourly).
//	    Render()
//	// rule == "FREQ=HOURLY;INTERVAL=2;COUNT=10"
//
// A rendered string is a snapshot: mutating the builder afterwards does not
// change values that were already handed to a component.
package structured
