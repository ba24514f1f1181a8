package ical

import (
	"time"

	"davcal/src-server/ical/utils"
)

// How a date-time value ends up on the wire
type dateForm int

const (
	formDate dateForm = iota
	formFloating
	formUTC
	formZoned
)

// Decide the rendering of a date-time. The zone of a zoned value is
// returned as tzid.
func resolveDateForm(t time.Time, isFloating bool, params []Param) (dateForm, string, error) {
	switch {
	case utils.HasParamValue(params, "VALUE", "DATE"):
		return formDate, "", nil
	case isFloating:
		return formFloating, "", nil
	case utils.IsUTC(t.Location()):
		return formUTC, "", nil
	}
	tzid, err := utils.ZoneID(t.Location())
	if err != nil {
		return 0, "", err
	}
	return formZoned, tzid, nil
}

func formatDate(t time.Time, form dateForm) string {
	switch form {
	case formDate:
		return utils.TimeToIcalDate(t)
	case formUTC:
		return utils.TimeToIcalUTC(t)
	default:
		return utils.TimeToIcalLocal(t)
	}
}

// Render the parameters of a date property: any caller TZID is dropped and
// zoned values get their own after the caller's parameters.
func dateParams(params []Param, form dateForm, tzid string) []Param {
	out := utils.RemoveParam(append([]Param(nil), params...), "TZID")
	if form == formZoned {
		out = append(out, utils.NewParam("TZID", tzid))
	}
	return out
}

// Append a single date-time property, embedding its zone when needed
func (n *node) addDate(name string, t time.Time, isFloating bool, params []Param) error {
	if t.IsZero() {
		return utils.InvalidArgument("date time is required", map[string]any{"property": name})
	}
	params, err := utils.NormalizeParams(params)
	if err != nil {
		return err
	}
	form, tzid, err := resolveDateForm(t, isFloating, params)
	if err != nil {
		return err
	}
	prop, err := newProperty(name, []string{formatDate(t, form)}, dateParams(params, form, tzid))
	if err != nil {
		return err
	}
	if form == formZoned {
		if err := n.doc.EnsureTimeZone(tzid); err != nil {
			return err
		}
	}
	n.props = append(n.props, prop)
	return nil
}

// Append a date-time property that only accepts UTC values
func (n *node) addUTC(name string, t time.Time, params []Param) error {
	if t.IsZero() || !utils.IsStrictUTC(t.Location()) {
		return utils.InvalidArgument("the value must use UTC as time zone", map[string]any{
			"property": name,
			"zone":     t.Location().String(),
		})
	}
	return n.add(name, []string{utils.TimeToIcalUTC(t)}, params)
}

// Append a multi-value date-time property. Every value is converted to the
// zone of the first one.
func (n *node) addDates(name string, dates []time.Time, params []Param) error {
	if len(dates) == 0 {
		return nil
	}
	for i, t := range dates {
		if t.IsZero() {
			return utils.InvalidArgument("date time is required", map[string]any{"property": name, "index": i})
		}
	}
	params, err := utils.NormalizeParams(params)
	if err != nil {
		return err
	}
	loc := dates[0].Location()
	form, tzid, err := resolveDateForm(dates[0], false, params)
	if err != nil {
		return err
	}

	values := make([]string, 0, len(dates))
	for _, t := range dates {
		values = append(values, formatDate(t.In(loc), form))
	}
	prop, err := newProperty(name, values, dateParams(params, form, tzid))
	if err != nil {
		return err
	}
	if form == formZoned {
		if err := n.doc.EnsureTimeZone(tzid); err != nil {
			return err
		}
	}
	n.props = append(n.props, prop)
	return nil
}
