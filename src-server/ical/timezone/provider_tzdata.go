package timezone

import (
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata"

	"davcal/src-server/ical/utils"

	"github.com/xyedo/rrule"
)

// Generate definitions from Go's zone database. Each observance is expressed
// as a yearly RRULE derived from the transitions of the reference year; when
// the rule does not reproduce the following years the observances are
// emitted as one-off DTSTARTs instead.
type TzdataProvider struct {
	now func() time.Time
}

func NewTzdataProvider() *TzdataProvider {
	return &TzdataProvider{now: time.Now}
}

// Pin the reference year, mostly for tests
func (p *TzdataProvider) WithClock(now func() time.Time) *TzdataProvider {
	p.now = now
	return p
}

type transition struct {
	at         time.Time
	offsetFrom int
	offsetTo   int
	name       string
	isDST      bool
}

func (p *TzdataProvider) Fetch(tzid string) (*Definition, error) {
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		return nil, utils.LookupFailure("unknown time zone", map[string]any{"tzid": tzid})
	}
	if utils.IsUTC(loc) {
		return nil, utils.LookupFailure("UTC has no time zone definition", map[string]any{"tzid": tzid})
	}

	year := p.now().Year()
	transitions := findTransitions(loc, year)
	properties := []string{"X-LIC-LOCATION:" + tzid}
	if len(transitions) == 0 {
		name, offset := time.Date(year, 1, 1, 0, 0, 0, 0, loc).Zone()
		return NewDefinition(tzid, properties, []Observance{{
			Kind: KindStandard,
			Lines: []string{
				"TZOFFSETFROM:" + formatOffset(offset),
				"TZOFFSETTO:" + formatOffset(offset),
				"TZNAME:" + name,
				"DTSTART:19700101T000000",
			},
		}}), nil
	}

	next := findTransitions(loc, year+1)
	observances := make([]Observance, 0, len(transitions))
	for _, tr := range transitions {
		observance, ok := ruleObservance(tr, next)
		if !ok {
			slog.Debug("time zone has no stable yearly rule", "tzid", tzid, "transition", tr.at)
			observance = fixedObservance(tr)
		}
		observances = append(observances, observance)
	}
	return NewDefinition(tzid, properties, observances), nil
}

// Walk the zone periods overlapping the year and collect their boundaries
func findTransitions(loc *time.Location, year int) []transition {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, loc)

	out := make([]transition, 0, 2)
	t := start
	for {
		_, boundary := t.ZoneBounds()
		if boundary.IsZero() || !boundary.Before(end) {
			return out
		}
		_, offsetFrom := boundary.Add(-time.Second).Zone()
		after := boundary.In(loc)
		name, offsetTo := after.Zone()
		if offsetFrom != offsetTo {
			out = append(out, transition{
				at:         boundary,
				offsetFrom: offsetFrom,
				offsetTo:   offsetTo,
				name:       name,
				isDST:      after.IsDST(),
			})
		}
		t = after
	}
}

// local wall clock of the transition, as seen before it happens
func (tr transition) wall() time.Time {
	w := tr.at.In(time.FixedZone("", tr.offsetFrom))
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), 0, time.UTC)
}

func (tr transition) kind() string {
	if tr.isDST {
		return KindDaylight
	}
	return KindStandard
}

func (tr transition) header() []string {
	return []string{
		"TZOFFSETFROM:" + formatOffset(tr.offsetFrom),
		"TZOFFSETTO:" + formatOffset(tr.offsetTo),
		"TZNAME:" + tr.name,
	}
}

func fixedObservance(tr transition) Observance {
	return Observance{
		Kind:  tr.kind(),
		Lines: append(tr.header(), "DTSTART:"+utils.TimeToIcalLocal(tr.wall())),
	}
}

// Derive `FREQ=YEARLY;BYMONTH=m;BYDAY=nXX` and check it against the
// transition of the same kind in the following year
func ruleObservance(tr transition, next []transition) (Observance, bool) {
	wall := tr.wall()
	var expected time.Time
	for _, n := range next {
		if n.offsetTo == tr.offsetTo && n.offsetFrom == tr.offsetFrom {
			expected = n.wall()
			break
		}
	}
	if expected.IsZero() {
		return Observance{}, false
	}

	day := weekDayToken(wall.Weekday())
	candidates := []string{fmt.Sprintf("%d%s", (wall.Day()-1)/7+1, day)}
	if wall.Day()+7 > daysIn(wall.Month(), wall.Year()) {
		candidates = append([]string{"-1" + day}, candidates...)
	}

	for _, byDay := range candidates {
		rule := fmt.Sprintf("FREQ=YEARLY;BYMONTH=%d;BYDAY=%s", int(wall.Month()), byDay)
		set, err := rrule.StrToRRuleSet(fmt.Sprintf(
			"DTSTART:%s\nRRULE:%s",
			utils.TimeToIcalUTC(time.Date(1970, 1, 1, wall.Hour(), wall.Minute(), wall.Second(), 0, time.UTC)),
			rule,
		))
		if err != nil {
			continue
		}
		if got := set.After(wall.Add(-time.Second), true); !got.Equal(wall) {
			continue
		}
		if got := set.After(expected.Add(-time.Second), true); !got.Equal(expected) {
			continue
		}
		first := set.After(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), true)
		return Observance{
			Kind: tr.kind(),
			Lines: append(tr.header(),
				"DTSTART:"+utils.TimeToIcalLocal(first),
				"RRULE:"+rule,
			),
		}, true
	}
	return Observance{}, false
}

func weekDayToken(d time.Weekday) string {
	return [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}[d]
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Format a UTC offset in seconds as ±HHMM[SS]
func formatOffset(offset int) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h, m, s := offset/3600, offset%3600/60, offset%60
	if s != 0 {
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d%02d", sign, h, m)
}

// Try providers in order and return the first definition found
type ChainProvider []Provider

func (c ChainProvider) Fetch(tzid string) (*Definition, error) {
	var lastErr error
	for _, p := range c {
		def, err := p.Fetch(tzid)
		if err == nil {
			return def, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = utils.LookupFailure("no time zone provider configured", map[string]any{"tzid": tzid})
	}
	return nil, lastErr
}
