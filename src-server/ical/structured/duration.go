package structured

import (
	"strconv"
	"strings"
	"time"

	"davcal/src-server/ical/utils"
)

// A DURATION value (RFC5545 3.3.6)
type Duration struct {
	week   int
	day    int
	hour   int
	minute int
	second int

	err error
}

func NewDuration() *Duration {
	return &Duration{}
}

// Build a duration from a time.Duration, using weeks only when the value is
// a whole number of weeks. Non-positive values leave the duration empty.
func DurationFrom(d time.Duration) *Duration {
	out := NewDuration()
	if d <= 0 {
		return out
	}
	const week = 7 * 24 * time.Hour
	if d%week == 0 {
		return out.SetWeek(int(d / week))
	}
	if days := int(d / (24 * time.Hour)); days > 0 {
		out.SetDay(days)
	}
	if hours := int(d % (24 * time.Hour) / time.Hour); hours > 0 {
		out.SetHour(hours)
	}
	if minutes := int(d % time.Hour / time.Minute); minutes > 0 {
		out.SetMinute(minutes)
	}
	if seconds := int(d % time.Minute / time.Second); seconds > 0 {
		out.SetSecond(seconds)
	}
	return out
}

func (d *Duration) set(field *int, name string, value int) *Duration {
	if value <= 0 {
		if d.err == nil {
			d.err = utils.InvalidArgument("duration "+name+" must be an integer greater than 0", map[string]any{name: value})
		}
		return d
	}
	*field = value
	return d
}

// Set the number of weeks. A week value overrides every other field.
func (d *Duration) SetWeek(week int) *Duration {
	return d.set(&d.week, "week", week)
}

func (d *Duration) SetDay(day int) *Duration {
	return d.set(&d.day, "day", day)
}

func (d *Duration) SetHour(hour int) *Duration {
	return d.set(&d.hour, "hour", hour)
}

func (d *Duration) SetMinute(minute int) *Duration {
	return d.set(&d.minute, "minute", minute)
}

func (d *Duration) SetSecond(second int) *Duration {
	return d.set(&d.second, "second", second)
}

// Get the first error recorded by a setter
func (d *Duration) Err() error {
	return d.err
}

// Render the duration, e.g. `P5W`, `P10D`, `PT1H30M`, `P1DT12H`
func (d *Duration) Render() (string, error) {
	if d == nil {
		return "", utils.InvalidState("duration is nil", nil)
	}
	if d.err != nil {
		return "", d.err
	}
	if d.week == 0 && d.day == 0 && d.hour == 0 && d.minute == 0 && d.second == 0 {
		return "", utils.InvalidState("at least one duration value must be set", nil)
	}

	var sb strings.Builder
	sb.WriteString("P")
	if d.week != 0 {
		sb.WriteString(strconv.Itoa(d.week))
		sb.WriteString("W")
		return sb.String(), nil
	}
	if d.day != 0 {
		sb.WriteString(strconv.Itoa(d.day))
		sb.WriteString("D")
	}
	if d.hour != 0 || d.minute != 0 || d.second != 0 {
		sb.WriteString("T")
		if d.hour != 0 {
			sb.WriteString(strconv.Itoa(d.hour))
			sb.WriteString("H")
		}
		if d.minute != 0 {
			sb.WriteString(strconv.Itoa(d.minute))
			sb.WriteString("M")
		}
		if d.second != 0 {
			sb.WriteString(strconv.Itoa(d.second))
			sb.WriteString("S")
		}
	}
	return sb.String(), nil
}
