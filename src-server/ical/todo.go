package ical

import (
	"strconv"
	"time"

	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"
)

// A VTODO. Create it with Document.AddTodo.
type Todo struct {
	entity
}

func newTodo(doc *Document) *Todo {
	t := &Todo{entity: newEntity(doc, vocab.EntityTodo)}
	t.self = t
	return t
}

// Set PERCENT-COMPLETE (RFC5545 3.8.1.8), 0 to 100
func (t *Todo) SetPercentComplete(percent int, params ...Param) error {
	if percent < 0 || percent > 100 {
		return utils.OutOfRange("percent complete should be between 0 and 100", map[string]any{"percent": percent})
	}
	return t.add("PERCENT-COMPLETE", []string{strconv.Itoa(percent)}, params)
}

// Set COMPLETED (RFC5545 3.8.2.1), which must be UTC
func (t *Todo) SetDateCompleted(completed time.Time, params ...Param) error {
	return t.addUTC("COMPLETED", completed, params)
}

// Set DUE (RFC5545 3.8.2.3)
func (t *Todo) SetDateDue(due time.Time, isFloating bool, params ...Param) error {
	return t.addDate("DUE", due, isFloating, params)
}
