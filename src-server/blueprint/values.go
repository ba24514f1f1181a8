package blueprint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"davcal/src-server/ical/structured"
	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"
)

// Resolves the arguments of one operation. It remembers whether a date
// asked to be floating or date-only so the operation can be adjusted.
type resolver struct {
	b        *Builder
	kind     vocab.Entity
	floating bool
	dateOnly bool
}

func (r *resolver) value(raw any) (any, error) {
	switch v := raw.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			resolved, err := r.value(item)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
		return out, nil
	case map[string]any:
		return r.object(v)
	default:
		return raw, nil
	}
}

func (r *resolver) object(obj map[string]any) (any, error) {
	switch {
	case has(obj, "date"):
		var d dateSpec
		if err := remarshal(obj, &d); err != nil {
			return nil, err
		}
		t, err := r.b.date(d)
		if err != nil {
			return nil, err
		}
		r.floating = r.floating || d.Floating
		r.dateOnly = r.dateOnly || d.DateOnly
		return t, nil
	case has(obj, "duration"):
		return r.duration(obj["duration"])
	case has(obj, "period"):
		return r.period(obj["period"])
	case has(obj, "rrule"):
		return r.rrule(obj["rrule"])
	case has(obj, "attendee"):
		return r.attendee(obj["attendee"])
	case has(obj, "organizer"):
		var o organizerSpec
		if err := remarshal(obj["organizer"], &o); err != nil {
			return nil, err
		}
		return structured.NewOrganizer(o.Mail).
			SetName(o.Name).
			SetSentBy(o.SentBy).
			SetDirectory(o.Dir).
			SetLanguage(o.Language), nil
	case has(obj, "contact"):
		var c contactSpec
		if err := remarshal(obj["contact"], &c); err != nil {
			return nil, err
		}
		return structured.NewContact(c.Text).
			SetLanguage(c.Language).
			SetAlternateRepresentation(c.AltRep), nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, utils.InvalidArgument("unknown argument object", map[string]any{"keys": strings.Join(keys, ",")})
}

type dateSpec struct {
	Date     string `json:"date"`
	TZID     string `json:"tzid,omitempty"`
	Floating bool   `json:"floating,omitempty"`
	DateOnly bool   `json:"dateOnly,omitempty"`
}

type durationSpec struct {
	Weeks   int `json:"weeks,omitempty"`
	Days    int `json:"days,omitempty"`
	Hours   int `json:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty"`
	Seconds int `json:"seconds,omitempty"`
}

type periodSpec struct {
	Start    any `json:"start"`
	End      any `json:"end,omitempty"`
	Duration any `json:"duration,omitempty"`
}

type rruleSpec struct {
	Freq       string   `json:"freq"`
	Until      any      `json:"until,omitempty"`
	Count      int      `json:"count,omitempty"`
	Interval   int      `json:"interval,omitempty"`
	BySecond   []int    `json:"bySecond,omitempty"`
	ByMinute   []int    `json:"byMinute,omitempty"`
	ByHour     []int    `json:"byHour,omitempty"`
	ByDay      []string `json:"byDay,omitempty"`
	ByMonthDay []int    `json:"byMonthDay,omitempty"`
	ByYearDay  []int    `json:"byYearDay,omitempty"`
	ByWeekNo   []int    `json:"byWeekNo,omitempty"`
	ByMonth    []int    `json:"byMonth,omitempty"`
	BySetPos   []int    `json:"bySetPos,omitempty"`
	Wkst       string   `json:"wkst,omitempty"`
}

type attendeeSpec struct {
	Mail          string   `json:"mail"`
	Entity        string   `json:"entity,omitempty"`
	Name          string   `json:"name,omitempty"`
	Role          string   `json:"role,omitempty"`
	PartStat      string   `json:"partstat,omitempty"`
	Rsvp          *bool    `json:"rsvp,omitempty"`
	CuType        string   `json:"cutype,omitempty"`
	Member        []string `json:"member,omitempty"`
	DelegatedTo   []string `json:"delegatedTo,omitempty"`
	DelegatedFrom []string `json:"delegatedFrom,omitempty"`
	SentBy        string   `json:"sentBy,omitempty"`
	Dir           string   `json:"dir,omitempty"`
	Language      string   `json:"language,omitempty"`
}

type organizerSpec struct {
	Mail     string `json:"mail"`
	Name     string `json:"name,omitempty"`
	SentBy   string `json:"sentBy,omitempty"`
	Dir      string `json:"dir,omitempty"`
	Language string `json:"language,omitempty"`
}

type contactSpec struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	AltRep   string `json:"altRep,omitempty"`
}

// Durations are Go duration strings ("1h30m") or an object of whole units
func (r *resolver) duration(raw any) (*structured.Duration, error) {
	if s, ok := raw.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, utils.InvalidArgument("invalid duration", map[string]any{"duration": s})
		}
		return structured.DurationFrom(d), nil
	}
	var spec durationSpec
	if err := remarshal(raw, &spec); err != nil {
		return nil, err
	}
	out := structured.NewDuration()
	if spec.Weeks != 0 {
		out.SetWeek(spec.Weeks)
	}
	if spec.Days != 0 {
		out.SetDay(spec.Days)
	}
	if spec.Hours != 0 {
		out.SetHour(spec.Hours)
	}
	if spec.Minutes != 0 {
		out.SetMinute(spec.Minutes)
	}
	if spec.Seconds != 0 {
		out.SetSecond(spec.Seconds)
	}
	return out, out.Err()
}

// A date given either as a date object or a bare string
func (r *resolver) dateArg(raw any) (time.Time, dateSpec, error) {
	var spec dateSpec
	switch v := raw.(type) {
	case string:
		spec.Date = v
	case map[string]any:
		if err := remarshal(v, &spec); err != nil {
			return time.Time{}, spec, err
		}
	default:
		return time.Time{}, spec, utils.InvalidArgument("expected a date", map[string]any{"got": raw})
	}
	t, err := r.b.date(spec)
	return t, spec, err
}

func (r *resolver) period(raw any) (*structured.Period, error) {
	var spec periodSpec
	if err := remarshal(raw, &spec); err != nil {
		return nil, err
	}
	start, _, err := r.dateArg(spec.Start)
	if err != nil {
		return nil, err
	}
	p := structured.NewPeriod().SetStart(start)
	switch {
	case spec.End != nil:
		end, _, err := r.dateArg(spec.End)
		if err != nil {
			return nil, err
		}
		p.SetEnd(end)
	case spec.Duration != nil:
		d, err := r.duration(spec.Duration)
		if err != nil {
			return nil, err
		}
		p.SetDuration(d)
	}
	return p, p.Err()
}

func (r *resolver) rrule(raw any) (*structured.RecurrenceRule, error) {
	var spec rruleSpec
	if err := remarshal(raw, &spec); err != nil {
		return nil, err
	}
	rule := structured.NewRecurrenceRule().SetFrequency(strings.ToUpper(spec.Freq))
	if spec.Until != nil {
		until, d, err := r.dateArg(spec.Until)
		if err != nil {
			return nil, err
		}
		rule.SetUntil(until, d.DateOnly, d.Floating)
	}
	if spec.Count != 0 {
		rule.SetCount(spec.Count)
	}
	if spec.Interval != 0 {
		rule.SetInterval(spec.Interval)
	}
	lists := []struct {
		values []int
		set    func([]int) *structured.RecurrenceRule
	}{
		{spec.BySecond, rule.SetSecondsList},
		{spec.ByMinute, rule.SetMinutesList},
		{spec.ByHour, rule.SetHoursList},
		{spec.ByMonthDay, rule.SetMonthDaysList},
		{spec.ByYearDay, rule.SetYearDaysList},
		{spec.ByWeekNo, rule.SetWeekNumbersList},
		{spec.ByMonth, rule.SetMonthsList},
		{spec.BySetPos, rule.SetPositionList},
	}
	for _, l := range lists {
		if l.values != nil {
			l.set(l.values)
		}
	}
	if spec.ByDay != nil {
		rule.SetWeekDaysList(spec.ByDay)
	}
	if spec.Wkst != "" {
		rule.SetWeekStartDay(strings.ToUpper(spec.Wkst))
	}
	return rule, rule.Err()
}

func (r *resolver) attendee(raw any) (*structured.Attendee, error) {
	var spec attendeeSpec
	if err := remarshal(raw, &spec); err != nil {
		return nil, err
	}
	entity := r.kind
	if spec.Entity != "" {
		entity = vocab.Entity(strings.ToUpper(spec.Entity))
	}
	a := structured.NewAttendee(spec.Mail, entity).
		SetName(spec.Name).
		SetRole(spec.Role).
		SetParticipantStatus(spec.PartStat).
		SetUserType(spec.CuType).
		SetSentBy(spec.SentBy).
		SetDirectory(spec.Dir).
		SetLanguage(spec.Language)
	if spec.Rsvp != nil {
		a.SetRsvp(*spec.Rsvp)
	}
	for _, m := range spec.Member {
		a.AddGroupMember(m)
	}
	for _, m := range spec.DelegatedTo {
		a.AddDelegatedTo(m)
	}
	for _, m := range spec.DelegatedFrom {
		a.AddDelegatedFrom(m)
	}
	return a, a.Err()
}

func has(obj map[string]any, key string) bool {
	_, ok := obj[key]
	return ok
}

// Decode a generic value into a typed spec. YAML and JSON decoders both
// produce maps, lists and scalars that survive a JSON round trip.
func remarshal(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return utils.InvalidArgument("invalid argument object", map[string]any{"error": err.Error()})
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return utils.InvalidArgument("invalid argument object", map[string]any{"error": err.Error()})
	}
	return nil
}

func stringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("not a string: %v", item)
			}
			out = append(out, s)
		}
		return out, nil
	case bool:
		return []string{strings.ToUpper(strconv.FormatBool(v))}, nil
	}
	return nil, fmt.Errorf("not a string: %v", raw)
}
