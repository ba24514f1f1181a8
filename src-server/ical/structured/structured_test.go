package structured_test

import (
	"errors"
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"

	"davcal/src-server/ical/structured"
	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"

	"github.com/teambition/rrule-go"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration *structured.Duration
		want     string
	}{
		{"day", structured.NewDuration().SetDay(10), "P10D"},
		{"hour", structured.NewDuration().SetHour(10), "PT10H"},
		{"minute", structured.NewDuration().SetMinute(10), "PT10M"},
		{"second", structured.NewDuration().SetSecond(10), "PT10S"},
		{"week", structured.NewDuration().SetWeek(10), "P10W"},
		{"week wins", structured.NewDuration().SetDay(2).SetHour(3).SetWeek(5), "P5W"},
		{"mixed", structured.NewDuration().SetDay(10).SetHour(10).SetSecond(5), "P10DT10H5S"},
		{"from time.Duration", structured.DurationFrom(26*time.Hour + 30*time.Minute), "P1DT2H30M"},
		{"from whole weeks", structured.DurationFrom(14 * 24 * time.Hour), "P2W"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.duration.Render()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDurationErrors(t *testing.T) {
	if _, err := structured.NewDuration().Render(); !errors.Is(err, utils.ErrInvalidState) {
		t.Errorf("empty duration: expected invalid state, got %v", err)
	}
	for _, d := range []*structured.Duration{
		structured.NewDuration().SetDay(0),
		structured.NewDuration().SetHour(-1),
		structured.NewDuration().SetWeek(-10),
	} {
		if _, err := d.Render(); !errors.Is(err, utils.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	}
}

func TestPeriod(t *testing.T) {
	start := time.Date(2016, 12, 12, 11, 0, 0, 0, time.UTC)
	end := time.Date(2016, 12, 15, 11, 0, 0, 0, time.UTC)

	// case: end
	func() {
		period := structured.NewPeriod().SetStart(start).SetEnd(end)
		got, err := period.Render()
		if err != nil {
			t.Fatal(err)
		}
		if got != "20161212T110000Z/20161215T110000Z" {
			t.Errorf("got %s", got)
		}

		// end still wins once a duration is set
		period.SetDuration(structured.NewDuration().SetDay(10))
		if got, _ := period.Render(); got != "20161212T110000Z/20161215T110000Z" {
			t.Errorf("end should take precedence, got %s", got)
		}
	}()

	// case: duration
	func() {
		got, err := structured.NewPeriod().SetStart(start).SetDuration(structured.NewDuration().SetDay(10)).Render()
		if err != nil {
			t.Fatal(err)
		}
		if got != "20161212T110000Z/P10D" {
			t.Errorf("got %s", got)
		}
	}()

	// case: missing parts
	func() {
		if _, err := structured.NewPeriod().SetEnd(end).Render(); !errors.Is(err, utils.ErrInvalidState) {
			t.Errorf("no start: expected invalid state, got %v", err)
		}
		if _, err := structured.NewPeriod().SetStart(start).Render(); !errors.Is(err, utils.ErrInvalidState) {
			t.Errorf("no end: expected invalid state, got %v", err)
		}
	}()

	// case: non UTC start
	func() {
		berlin, err := time.LoadLocation("Europe/Berlin")
		if err != nil {
			t.Fatal(err)
		}
		_, err = structured.NewPeriod().SetStart(start.In(berlin)).SetEnd(end).Render()
		if !errors.Is(err, utils.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	}()

	// case: GMT is not UTC
	func() {
		gmt, err := time.LoadLocation("GMT")
		if err != nil {
			t.Fatal(err)
		}
		_, err = structured.NewPeriod().SetStart(start).SetEnd(end.In(gmt)).Render()
		if !errors.Is(err, utils.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	}()
}

func TestRecurrenceRule(t *testing.T) {
	until := time.Date(2016, 12, 12, 11, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		rule *structured.RecurrenceRule
		want string
	}{
		{
			name: "frequency first",
			rule: structured.NewRecurrenceRule().SetInterval(2).SetCount(10).SetFrequency(vocab.FreqHourly),
			want: "FREQ=HOURLY;INTERVAL=2;COUNT=10",
		},
		{
			name: "frequency reset",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqDaily).SetInterval(2).SetFrequency(vocab.FreqWeekly),
			want: "FREQ=WEEKLY;INTERVAL=2",
		},
		{
			name: "until utc",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqDaily).SetUntil(until, false, false),
			want: "FREQ=DAILY;UNTIL=20161212T110000Z",
		},
		{
			name: "until date",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqDaily).SetUntil(until, true, false),
			want: "FREQ=DAILY;UNTIL=20161212",
		},
		{
			name: "until floating",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqDaily).SetUntil(until, false, true),
			want: "FREQ=DAILY;UNTIL=20161212T110000",
		},
		{
			name: "week days",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqYearly).SetWeekDaysList([]string{"10MO", "20FR", "-30SA", "10MO"}),
			want: "FREQ=YEARLY;BYDAY=10MO,20FR,-30SA",
		},
		{
			name: "months deduplicated",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqYearly).SetMonthsList([]int{2, 4, 6, 8, 10, 12, 2}),
			want: "FREQ=YEARLY;BYMONTH=2,4,6,8,10,12",
		},
		{
			name: "week start",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqWeekly).SetWeekStartDay(vocab.Monday),
			want: "FREQ=WEEKLY;WKST=MO",
		},
		{
			name: "signed lists",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqMonthly).SetMonthDaysList([]int{1, -1}).SetPositionList([]int{-1}),
			want: "FREQ=MONTHLY;BYMONTHDAY=1,-1;BYSETPOS=-1",
		},
		{
			name: "time lists",
			rule: structured.NewRecurrenceRule().SetFrequency(vocab.FreqDaily).SetHoursList([]int{0, 23}).SetMinutesList([]int{0, 59}).SetSecondsList([]int{0, 30}),
			want: "FREQ=DAILY;BYHOUR=0,23;BYMINUTE=0,59;BYSECOND=0,30",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule.Render()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			// the rendered rule must be understood by an independent RRULE parser
			if _, err := rrule.StrToRRule(got); err != nil {
				t.Errorf("rrule-go rejects %q: %v", got, err)
			}
		})
	}
}

func TestRecurrenceRuleLeapSecond(t *testing.T) {
	got, err := structured.NewRecurrenceRule().SetFrequency(vocab.FreqMinutely).SetSecondsList([]int{60}).Render()
	if err != nil {
		t.Fatal(err)
	}
	if got != "FREQ=MINUTELY;BYSECOND=60" {
		t.Errorf("got %s", got)
	}
}

func TestRecurrenceRuleErrors(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	base := func() *structured.RecurrenceRule {
		return structured.NewRecurrenceRule().SetFrequency(vocab.FreqDaily)
	}
	tests := []struct {
		name string
		rule *structured.RecurrenceRule
		want error
	}{
		{"unknown frequency", structured.NewRecurrenceRule().SetFrequency("FORTNIGHTLY"), utils.ErrInvalidArgument},
		{"missing frequency", structured.NewRecurrenceRule().SetCount(2), utils.ErrInvalidState},
		{"count and until", base().SetCount(2).SetUntil(time.Now().UTC(), false, false), utils.ErrInvalidState},
		{"zoned until", base().SetUntil(time.Now().In(berlin), false, false), utils.ErrInvalidArgument},
		{"zero count", base().SetCount(0), utils.ErrInvalidArgument},
		{"zero interval", base().SetInterval(0), utils.ErrInvalidArgument},
		{"second 61", base().SetSecondsList([]int{61}), utils.ErrInvalidArgument},
		{"minute 60", base().SetMinutesList([]int{60}), utils.ErrInvalidArgument},
		{"hour 24", base().SetHoursList([]int{24}), utils.ErrInvalidArgument},
		{"month 0", base().SetMonthsList([]int{0}), utils.ErrInvalidArgument},
		{"month day 0", base().SetMonthDaysList([]int{0}), utils.ErrOutOfRange},
		{"month day 32", base().SetMonthDaysList([]int{32}), utils.ErrOutOfRange},
		{"year day -367", base().SetYearDaysList([]int{-367}), utils.ErrOutOfRange},
		{"week number 54", base().SetWeekNumbersList([]int{54}), utils.ErrOutOfRange},
		{"position 367", base().SetPositionList([]int{367}), utils.ErrOutOfRange},
		{"malformed week day", base().SetWeekDaysList([]string{"MO", "1-MO"}), utils.ErrInvalidArgument},
		{"ordinal 54", base().SetWeekDaysList([]string{"54MO"}), utils.ErrOutOfRange},
		{"ordinal 0", base().SetWeekDaysList([]string{"0MO"}), utils.ErrOutOfRange},
		{"unknown week day", base().SetWeekDaysList([]string{"XY"}), utils.ErrInvalidArgument},
		{"unknown week start", base().SetWeekStartDay("XX"), utils.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.rule.Render(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAttendee(t *testing.T) {
	// case: every parameter in order
	func() {
		address, params, err := structured.NewAttendee("address@domain.tdn", vocab.EntityEvent).
			SetLanguage("de").
			SetDirectory("ldap://example.com").
			SetSentBy("sent@domain.tdn").
			AddDelegatedFrom("from@domain.tdn").
			AddDelegatedTo("to@domain.tdn").
			AddGroupMember("group1@domain.tdn").
			AddGroupMember("group2@domain.tdn").
			SetUserType(vocab.CuTypeIndividual).
			SetRsvp(false).
			SetParticipantStatus(vocab.PartStatAccepted).
			SetRole(vocab.RoleChair).
			SetName("John Doe").
			Render()
		if err != nil {
			t.Fatal(err)
		}
		if address != "mailto:address@domain.tdn" {
			t.Errorf("unexpected address %s", address)
		}
		want := []utils.Param{
			{Name: "CN", Values: []string{"John Doe"}},
			{Name: "ROLE", Values: []string{"CHAIR"}},
			{Name: "PARTSTAT", Values: []string{"ACCEPTED"}},
			{Name: "RSVP", Values: []string{"FALSE"}},
			{Name: "CUTYPE", Values: []string{"INDIVIDUAL"}},
			{Name: "MEMBER", Values: []string{"mailto:group1@domain.tdn", "mailto:group2@domain.tdn"}},
			{Name: "DELEGATED-TO", Values: []string{"mailto:to@domain.tdn"}},
			{Name: "DELEGATED-FROM", Values: []string{"mailto:from@domain.tdn"}},
			{Name: "SENT-BY", Values: []string{"mailto:sent@domain.tdn"}},
			{Name: "DIR", Values: []string{"ldap://example.com"}},
			{Name: "LANGUAGE", Values: []string{"de"}},
		}
		if !reflect.DeepEqual(params, want) {
			t.Errorf("got %v, want %v", params, want)
		}
	}()

	// case: nothing set, empty inputs ignored
	func() {
		_, params, err := structured.NewAttendee("address@domain.tdn", vocab.EntityTodo).
			SetName("").
			AddGroupMember("").
			SetSentBy(" ").
			Render()
		if err != nil {
			t.Fatal(err)
		}
		if len(params) != 0 {
			t.Errorf("expected no parameters, got %v", params)
		}
	}()

	// case: status vocabulary follows the entity
	func() {
		if _, _, err := structured.NewAttendee("a@domain.tdn", vocab.EntityTodo).SetParticipantStatus(vocab.PartStatInProcess).Render(); err != nil {
			t.Errorf("IN-PROCESS should be valid for a to-do: %v", err)
		}
		if _, _, err := structured.NewAttendee("a@domain.tdn", vocab.EntityEvent).SetParticipantStatus(vocab.PartStatInProcess).Render(); !errors.Is(err, utils.ErrInvalidArgument) {
			t.Errorf("IN-PROCESS should be rejected for an event, got %v", err)
		}
	}()

	// case: invalid inputs
	func() {
		for _, a := range []*structured.Attendee{
			structured.NewAttendee("", vocab.EntityEvent),
			structured.NewAttendee("a@domain.tdn", "VJOURNAL"),
			structured.NewAttendee("a@domain.tdn", vocab.EntityEvent).SetRole("BOSS"),
			structured.NewAttendee("a@domain.tdn", vocab.EntityEvent).SetUserType("ROBOT"),
		} {
			if _, _, err := a.Render(); !errors.Is(err, utils.ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		}
	}()
}

func TestOrganizerAndContact(t *testing.T) {
	address, params, err := structured.NewOrganizer("address@domain.tdn").
		SetName("John Doe").
		SetSentBy("assistant@domain.tdn").
		Render()
	if err != nil {
		t.Fatal(err)
	}
	if address != "mailto:address@domain.tdn" || len(params) != 2 || params[1].Values[0] != "mailto:assistant@domain.tdn" {
		t.Errorf("unexpected organizer %s %v", address, params)
	}
	if _, _, err := structured.NewOrganizer("").Render(); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}

	address, params, err = structured.NewContact("John Doe").SetLanguage("en").SetAlternateRepresentation("http://domain.tdn/john").Render()
	if err != nil {
		t.Fatal(err)
	}
	if address != "John Doe" || params[0].Name != "LANGUAGE" || params[1].Name != "ALTREP" {
		t.Errorf("unexpected contact %s %v", address, params)
	}
}
