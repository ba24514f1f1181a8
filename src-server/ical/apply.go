package ical

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"davcal/src-server/ical/structured"
	"davcal/src-server/ical/utils"
)

// An operation reachable by name. Arguments arrive untyped from JSON or
// YAML decoders and are checked by the operation itself.
type operation[T any] func(target T, args []any, params []Param) error

var entityOps = map[string]operation[*entity]{
	"setuid":         textOp(func(e *entity, v string, p []Param) error { return e.SetUid(v, p...) }),
	"setsummary":     textOp(func(e *entity, v string, p []Param) error { return e.SetSummary(v, p...) }),
	"setdescription": textOp(func(e *entity, v string, p []Param) error { return e.SetDescription(v, p...) }),
	"setcomment":     textOp(func(e *entity, v string, p []Param) error { return e.SetComment(v, p...) }),
	"addattachment":  textOp(func(e *entity, v string, p []Param) error { return e.AddAttachment(v, p...) }),
	"setclass":       textOp(func(e *entity, v string, p []Param) error { return e.SetClass(v, p...) }),
	"setlocation":    textOp(func(e *entity, v string, p []Param) error { return e.SetLocation(v, p...) }),
	"setstatus":      textOp(func(e *entity, v string, p []Param) error { return e.SetStatus(v, p...) }),
	"setrelatedto":   textOp(func(e *entity, v string, p []Param) error { return e.SetRelatedTo(v, p...) }),
	"seturl":         textOp(func(e *entity, v string, p []Param) error { return e.SetUrl(v, p...) }),
	"setrecurrenceid": textOp(func(e *entity, v string, p []Param) error {
		return e.SetRecurrenceId(v, p...)
	}),
	"addcategories": func(e *entity, args []any, p []Param) error {
		values, err := argStrings(args)
		if err != nil {
			return err
		}
		return e.AddCategories(values, p...)
	},
	"addresources": func(e *entity, args []any, p []Param) error {
		values, err := argStrings(args)
		if err != nil {
			return err
		}
		return e.AddResources(values, p...)
	},
	"setgeo": func(e *entity, args []any, p []Param) error {
		latLong, err := argFloats(args)
		if err != nil {
			return err
		}
		return e.SetGeo(latLong, p...)
	},
	"setpriority": intOp(func(e *entity, v int, p []Param) error { return e.SetPriority(v, p...) }),
	"setsequence": intOp(func(e *entity, v int, p []Param) error { return e.SetSequence(v, p...) }),
	"setdatestart": dateOp(func(e *entity, t time.Time, floating bool, p []Param) error {
		return e.SetDateStart(t, floating, p...)
	}),
	"setdatecreated": dateOp(func(e *entity, t time.Time, _ bool, p []Param) error {
		return e.SetDateCreated(t, p...)
	}),
	"setdatelastmodified": dateOp(func(e *entity, t time.Time, _ bool, p []Param) error {
		return e.SetDateLastModified(t, p...)
	}),
	"setduration": durationOp(func(e *entity, d *structured.Duration, p []Param) error {
		return e.SetDuration(d, p...)
	}),
	"addexceptiondates": func(e *entity, args []any, p []Param) error {
		dates, err := argTimes(args)
		if err != nil {
			return err
		}
		return e.AddExceptionDates(dates, p...)
	},
	"addrecurrencedates": func(e *entity, args []any, p []Param) error {
		if utils.HasParamValue(p, "VALUE", "PERIOD") {
			return utils.InvalidArgument("use AddRecurrencePeriods to set periods", nil)
		}
		dates, err := argTimes(args)
		if err != nil {
			return err
		}
		return e.AddRecurrenceDates(dates, p...)
	},
	"addrecurrenceperiods": func(e *entity, args []any, p []Param) error {
		periods := make([]*structured.Period, 0, len(args))
		for i, arg := range flatten(args) {
			period, ok := arg.(*structured.Period)
			if !ok {
				return utils.InvalidArgument("all values of periods must be periods", map[string]any{"index": i})
			}
			periods = append(periods, period)
		}
		return e.AddRecurrencePeriods(periods, p...)
	},
	"setrecurrencerule": func(e *entity, args []any, _ []Param) error {
		rule, err := argOne[*structured.RecurrenceRule](args, "recurrence rule")
		if err != nil {
			return err
		}
		return e.SetRecurrenceRule(rule)
	},
	"addattendee": func(e *entity, args []any, _ []Param) error {
		attendee, err := argOne[*structured.Attendee](args, "attendee")
		if err != nil {
			return err
		}
		return e.AddAttendee(attendee)
	},
	"setcontact": func(e *entity, args []any, _ []Param) error {
		contact, err := argOne[*structured.Contact](args, "contact")
		if err != nil {
			return err
		}
		return e.SetContact(contact)
	},
	"setorganizer": func(e *entity, args []any, _ []Param) error {
		organizer, err := argOne[*structured.Organizer](args, "organizer")
		if err != nil {
			return err
		}
		return e.SetOrganizer(organizer)
	},
}

var eventOps = map[string]operation[*Event]{
	"setdateend": dateOp(func(e *Event, t time.Time, floating bool, p []Param) error {
		return e.SetDateEnd(t, floating, p...)
	}),
	"settransparency": textOp(func(e *Event, v string, p []Param) error { return e.SetTransparency(v, p...) }),
}

var todoOps = map[string]operation[*Todo]{
	"setpercentcomplete": intOp(func(t *Todo, v int, p []Param) error { return t.SetPercentComplete(v, p...) }),
	"setdatecompleted": dateOp(func(t *Todo, d time.Time, _ bool, p []Param) error {
		return t.SetDateCompleted(d, p...)
	}),
	"setdatedue": dateOp(func(t *Todo, d time.Time, floating bool, p []Param) error {
		return t.SetDateDue(d, floating, p...)
	}),
}

var alarmOps = map[string]operation[*Alarm]{
	"settrigger": durationOp(func(a *Alarm, d *structured.Duration, p []Param) error {
		return a.SetTrigger(d, p...)
	}),
	"settriggerbefore": durationOp(func(a *Alarm, d *structured.Duration, p []Param) error {
		return a.SetTriggerBefore(d, p...)
	}),
	"addattachment":  textOp(func(a *Alarm, v string, p []Param) error { return a.AddAttachment(v, p...) }),
	"setaction":      textOp(func(a *Alarm, v string, p []Param) error { return a.SetAction(v, p...) }),
	"setdescription": textOp(func(a *Alarm, v string, p []Param) error { return a.SetDescription(v, p...) }),
	"setsummary":     textOp(func(a *Alarm, v string, p []Param) error { return a.SetSummary(v, p...) }),
	"setduration": durationOp(func(a *Alarm, d *structured.Duration, p []Param) error {
		return a.SetDuration(d, p...)
	}),
	"setrepeatcount": intOp(func(a *Alarm, v int, p []Param) error { return a.SetRepeatCount(v, p...) }),
	"addattendee": func(a *Alarm, args []any, _ []Param) error {
		attendee, err := argOne[*structured.Attendee](args, "attendee")
		if err != nil {
			return err
		}
		return a.AddAttendee(attendee)
	},
}

func opKey(op string) string {
	return strings.ToLower(strings.TrimSpace(op))
}

func noSuchOperation(op, kind string) error {
	return utils.NoSuchOperation("there is no operation with this name", map[string]any{
		"operation": op,
		"entity":    kind,
	})
}

// Run a setter by name, e.g. `Apply("SetPriority", []any{4})`. The names
// are the method names, matched case-insensitively.
func (e *Event) Apply(op string, args []any, params ...Param) error {
	if fn, ok := eventOps[opKey(op)]; ok {
		return fn(e, args, params)
	}
	if fn, ok := entityOps[opKey(op)]; ok {
		return fn(&e.entity, args, params)
	}
	return noSuchOperation(op, string(e.kind))
}

// Run a setter by name. See Event.Apply.
func (t *Todo) Apply(op string, args []any, params ...Param) error {
	if fn, ok := todoOps[opKey(op)]; ok {
		return fn(t, args, params)
	}
	if fn, ok := entityOps[opKey(op)]; ok {
		return fn(&t.entity, args, params)
	}
	return noSuchOperation(op, string(t.kind))
}

// Run a setter by name. See Event.Apply.
func (a *Alarm) Apply(op string, args []any, params ...Param) error {
	if fn, ok := alarmOps[opKey(op)]; ok {
		return fn(a, args, params)
	}
	return noSuchOperation(op, a.name)
}

// #region operation adapters

func textOp[T any](fn func(T, string, []Param) error) operation[T] {
	return func(target T, args []any, p []Param) error {
		v, err := argString(args)
		if err != nil {
			return err
		}
		return fn(target, v, p)
	}
}

func intOp[T any](fn func(T, int, []Param) error) operation[T] {
	return func(target T, args []any, p []Param) error {
		v, err := argInt(args)
		if err != nil {
			return err
		}
		return fn(target, v, p)
	}
}

// Arguments: the date-time and an optional floating flag
func dateOp[T any](fn func(T, time.Time, bool, []Param) error) operation[T] {
	return func(target T, args []any, p []Param) error {
		if len(args) != 1 && len(args) != 2 {
			return argCount(args, 1)
		}
		t, ok := args[0].(time.Time)
		if !ok {
			return utils.InvalidArgument("expected a date time", map[string]any{"got": args[0]})
		}
		floating := false
		if len(args) == 2 {
			if floating, ok = args[1].(bool); !ok {
				return utils.InvalidArgument("expected a boolean floating flag", map[string]any{"got": args[1]})
			}
		}
		return fn(target, t, floating, p)
	}
}

func durationOp[T any](fn func(T, *structured.Duration, []Param) error) operation[T] {
	return func(target T, args []any, p []Param) error {
		d, err := argOne[*structured.Duration](args, "duration")
		if err != nil {
			return err
		}
		return fn(target, d, p)
	}
}

// #endregion

// #region argument coercion

func argCount(args []any, want int) error {
	return utils.InvalidArgument("wrong number of arguments", map[string]any{"want": want, "got": len(args)})
}

func argOne[T any](args []any, what string) (T, error) {
	var zero T
	if len(args) != 1 {
		return zero, argCount(args, 1)
	}
	v, ok := args[0].(T)
	if !ok {
		return zero, utils.InvalidArgument("expected a "+what, map[string]any{"got": args[0]})
	}
	return v, nil
}

func argString(args []any) (string, error) {
	return argOne[string](args, "string")
}

// Accept Go integers, integral floats and json.Number. Fractions, strings
// and booleans are rejected.
func argInt(args []any) (int, error) {
	if len(args) != 1 {
		return 0, argCount(args, 1)
	}
	notInt := utils.InvalidArgument("expected an integer value", map[string]any{"got": args[0]})
	switch v := args[0].(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, notInt
		}
		return int(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, notInt
		}
		return int(i), nil
	default:
		return 0, notInt
	}
}

func toFloat(arg any) (float64, bool) {
	switch v := arg.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func argFloats(args []any) ([]float64, error) {
	values := flatten(args)
	out := make([]float64, 0, len(values))
	for _, arg := range values {
		f, ok := toFloat(arg)
		if !ok {
			return nil, utils.InvalidArgument("expected numbers", map[string]any{"got": arg})
		}
		out = append(out, f)
	}
	return out, nil
}

// Accept either one list argument or the values spread as arguments
func flatten(args []any) []any {
	if len(args) != 1 {
		return args
	}
	switch v := args[0].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, 0, len(v))
		for _, s := range v {
			out = append(out, s)
		}
		return out
	case []float64:
		out := make([]any, 0, len(v))
		for _, f := range v {
			out = append(out, f)
		}
		return out
	case []time.Time:
		out := make([]any, 0, len(v))
		for _, t := range v {
			out = append(out, t)
		}
		return out
	case []*structured.Period:
		out := make([]any, 0, len(v))
		for _, p := range v {
			out = append(out, p)
		}
		return out
	}
	return args
}

func argStrings(args []any) ([]string, error) {
	values := flatten(args)
	out := make([]string, 0, len(values))
	for _, arg := range values {
		s, ok := arg.(string)
		if !ok {
			return nil, utils.InvalidArgument("expected strings", map[string]any{"got": arg})
		}
		out = append(out, s)
	}
	return out, nil
}

func argTimes(args []any) ([]time.Time, error) {
	values := flatten(args)
	out := make([]time.Time, 0, len(values))
	for _, arg := range values {
		t, ok := arg.(time.Time)
		if !ok {
			return nil, utils.InvalidArgument("expected date times", map[string]any{"got": arg})
		}
		out = append(out, t)
	}
	return out, nil
}

// #endregion
