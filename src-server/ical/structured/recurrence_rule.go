package structured

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"
)

const (
	PartFreq       = "FREQ"
	PartUntil      = "UNTIL"
	PartCount      = "COUNT"
	PartInterval   = "INTERVAL"
	PartBySecond   = "BYSECOND"
	PartByMinute   = "BYMINUTE"
	PartByHour     = "BYHOUR"
	PartByDay      = "BYDAY"
	PartByMonthDay = "BYMONTHDAY"
	PartByYearDay  = "BYYEARDAY"
	PartByWeekNo   = "BYWEEKNO"
	PartByMonth    = "BYMONTH"
	PartBySetPos   = "BYSETPOS"
	PartWkst       = "WKST"
)

var weekDayPattern = regexp.MustCompile(`^([+\-]?\d{1,2})?([A-Z]{1,2})$`)

// A RECUR value (RFC5545 3.3.10). Rule parts keep their insertion order,
// except FREQ which is always rendered first.
type RecurrenceRule struct {
	keys  []string
	parts map[string]string

	err error
}

func NewRecurrenceRule() *RecurrenceRule {
	return &RecurrenceRule{parts: make(map[string]string)}
}

func (r *RecurrenceRule) fail(err error) *RecurrenceRule {
	if r.err == nil {
		r.err = err
	}
	return r
}

func (r *RecurrenceRule) put(key, value string) {
	if _, ok := r.parts[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.parts[key] = value
}

func (r *RecurrenceRule) SetFrequency(frequency string) *RecurrenceRule {
	if !vocab.Frequency.Has(frequency) {
		return r.fail(utils.InvalidArgument("value not in frequency vocabulary", map[string]any{"frequency": frequency}))
	}
	keys := make([]string, 0, len(r.keys)+1)
	keys = append(keys, PartFreq)
	for _, k := range r.keys {
		if k != PartFreq {
			keys = append(keys, k)
		}
	}
	r.keys = keys
	r.parts[PartFreq] = frequency
	return r
}

// Set the UNTIL bound. A date-time that is neither floating nor date-only
// must be UTC.
func (r *RecurrenceRule) SetUntil(until time.Time, onlyDate bool, isFloating bool) *RecurrenceRule {
	if !isFloating && !onlyDate && !utils.IsStrictUTC(until.Location()) {
		return r.fail(utils.InvalidArgument("non floating date time value must have UTC time zone", map[string]any{"zone": until.Location().String()}))
	}
	switch {
	case onlyDate:
		r.put(PartUntil, utils.TimeToIcalDate(until))
	case isFloating:
		r.put(PartUntil, utils.TimeToIcalLocal(until))
	default:
		r.put(PartUntil, utils.TimeToIcalUTC(until))
	}
	return r
}

func (r *RecurrenceRule) SetCount(count int) *RecurrenceRule {
	if count < 1 {
		return r.fail(utils.InvalidArgument("count must be a positive integer", map[string]any{"count": count}))
	}
	r.put(PartCount, strconv.Itoa(count))
	return r
}

func (r *RecurrenceRule) SetInterval(interval int) *RecurrenceRule {
	if interval < 1 {
		return r.fail(utils.InvalidArgument("interval must be a positive integer", map[string]any{"interval": interval}))
	}
	r.put(PartInterval, strconv.Itoa(interval))
	return r
}

// inclusive range check
func (r *RecurrenceRule) setRange(part string, values []int, min, max int) *RecurrenceRule {
	if len(values) == 0 {
		return r.fail(utils.InvalidArgument(part+" needs at least one value", nil))
	}
	for _, v := range values {
		if v < min || v > max {
			return r.fail(utils.InvalidArgument(part+" value out of its domain", map[string]any{"value": v, "min": min, "max": max}))
		}
	}
	r.put(part, joinInts(values))
	return r
}

// signed range check excluding zero
func (r *RecurrenceRule) setSigned(part string, values []int, max int) *RecurrenceRule {
	if len(values) == 0 {
		return r.fail(utils.InvalidArgument(part+" needs at least one value", nil))
	}
	for _, v := range values {
		if v == 0 || v < -max || v > max {
			return r.fail(utils.OutOfRange(part+" value must be between -"+strconv.Itoa(max)+" and -1 or 1 and "+strconv.Itoa(max), map[string]any{"value": v}))
		}
	}
	r.put(part, joinInts(values))
	return r
}

func (r *RecurrenceRule) SetSecondsList(seconds []int) *RecurrenceRule {
	return r.setRange(PartBySecond, seconds, 0, 60)
}

func (r *RecurrenceRule) SetMinutesList(minutes []int) *RecurrenceRule {
	return r.setRange(PartByMinute, minutes, 0, 59)
}

func (r *RecurrenceRule) SetHoursList(hours []int) *RecurrenceRule {
	return r.setRange(PartByHour, hours, 0, 23)
}

func (r *RecurrenceRule) SetMonthsList(months []int) *RecurrenceRule {
	return r.setRange(PartByMonth, months, 1, 12)
}

func (r *RecurrenceRule) SetMonthDaysList(monthDays []int) *RecurrenceRule {
	return r.setSigned(PartByMonthDay, monthDays, 31)
}

func (r *RecurrenceRule) SetYearDaysList(yearDays []int) *RecurrenceRule {
	return r.setSigned(PartByYearDay, yearDays, 366)
}

func (r *RecurrenceRule) SetWeekNumbersList(weekNumbers []int) *RecurrenceRule {
	return r.setSigned(PartByWeekNo, weekNumbers, 53)
}

func (r *RecurrenceRule) SetPositionList(positions []int) *RecurrenceRule {
	return r.setSigned(PartBySetPos, positions, 366)
}

// Set BYDAY from tokens such as `MO`, `2TU` or `-1SU`
func (r *RecurrenceRule) SetWeekDaysList(weekDays []string) *RecurrenceRule {
	if len(weekDays) == 0 {
		return r.fail(utils.InvalidArgument(PartByDay+" needs at least one value", nil))
	}
	for _, token := range weekDays {
		m := weekDayPattern.FindStringSubmatch(token)
		if m == nil {
			return r.fail(utils.InvalidArgument("week day has an invalid format", map[string]any{"value": token}))
		}
		if m[1] != "" {
			ordinal, err := strconv.Atoi(m[1])
			if err != nil || ordinal == 0 || ordinal < -53 || ordinal > 53 {
				return r.fail(utils.OutOfRange("prefix of week number must be between -53 and -1 or 1 and 53", map[string]any{"value": token}))
			}
		}
		if !vocab.WeekDay.Has(m[2]) {
			return r.fail(utils.InvalidArgument("the given value is not within the allowed week days", map[string]any{"value": token}))
		}
	}
	r.put(PartByDay, strings.Join(dedupe(weekDays), ","))
	return r
}

func (r *RecurrenceRule) SetWeekStartDay(weekDay string) *RecurrenceRule {
	if !vocab.WeekDay.Has(weekDay) {
		return r.fail(utils.InvalidArgument("week day not in week day vocabulary", map[string]any{"value": weekDay}))
	}
	r.put(PartWkst, weekDay)
	return r
}

func (r *RecurrenceRule) Err() error {
	return r.err
}

// Render the rule as `FREQ=...;KEY=VALUE;...`
func (r *RecurrenceRule) Render() (string, error) {
	if r == nil {
		return "", utils.InvalidState("recurrence rule is nil", nil)
	}
	if r.err != nil {
		return "", r.err
	}
	if _, ok := r.parts[PartFreq]; !ok {
		return "", utils.InvalidState("recurrence rule needs a frequency", nil)
	}
	_, hasCount := r.parts[PartCount]
	_, hasUntil := r.parts[PartUntil]
	if hasCount && hasUntil {
		return "", utils.InvalidState("COUNT and UNTIL must not occur in the same rule", nil)
	}

	pairs := make([]string, 0, len(r.keys))
	for _, k := range r.keys {
		pairs = append(pairs, k+"="+r.parts[k])
	}
	return strings.Join(pairs, ";"), nil
}

func joinInts(values []int) string {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		strs = append(strs, strconv.Itoa(v))
	}
	return strings.Join(dedupe(strs), ",")
}

// drop repeated values, first occurrence wins
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
