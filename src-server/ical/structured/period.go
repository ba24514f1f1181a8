package structured

import (
	"time"

	"davcal/src-server/ical/utils"
)

// A PERIOD value (RFC5545 3.3.9): an explicit start plus either an end or a
// duration. Both date-times must be UTC.
type Period struct {
	start    time.Time
	end      time.Time
	duration *Duration

	err error
}

func NewPeriod() *Period {
	return &Period{}
}

func (p *Period) fail(err error) *Period {
	if p.err == nil {
		p.err = err
	}
	return p
}

func (p *Period) SetStart(start time.Time) *Period {
	if !utils.IsStrictUTC(start.Location()) {
		return p.fail(utils.InvalidArgument("period start must be UTC", map[string]any{"zone": start.Location().String()}))
	}
	p.start = start
	return p
}

func (p *Period) SetEnd(end time.Time) *Period {
	if !utils.IsStrictUTC(end.Location()) {
		return p.fail(utils.InvalidArgument("period end must be UTC", map[string]any{"zone": end.Location().String()}))
	}
	p.end = end
	return p
}

// Set the duration. It is only rendered when no end is set.
func (p *Period) SetDuration(duration *Duration) *Period {
	if duration == nil {
		return p.fail(utils.InvalidArgument("period duration is nil", nil))
	}
	p.duration = duration
	return p
}

func (p *Period) Err() error {
	return p.err
}

// Render `<start>/<end>` or `<start>/<duration>`
func (p *Period) Render() (string, error) {
	if p == nil {
		return "", utils.InvalidState("period is nil", nil)
	}
	if p.err != nil {
		return "", p.err
	}
	if p.start.IsZero() {
		return "", utils.InvalidState("no start date time is set", nil)
	}
	if p.end.IsZero() && p.duration == nil {
		return "", utils.InvalidState("either end date time or duration must be set", nil)
	}

	start := utils.TimeToIcalUTC(p.start)
	if !p.end.IsZero() {
		return start + "/" + utils.TimeToIcalUTC(p.end), nil
	}
	duration, err := p.duration.Render()
	if err != nil {
		return "", err
	}
	return start + "/" + duration, nil
}
