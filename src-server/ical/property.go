package ical

import (
	"strings"

	"davcal/src-server/ical/utils"
)

// Properties whose values are TEXT and get escaped on creation
var textProperties = map[string]struct{}{
	"SUMMARY":      {},
	"DESCRIPTION":  {},
	"COMMENT":      {},
	"LOCATION":     {},
	"CATEGORIES":   {},
	"RESOURCES":    {},
	"CONTACT":      {},
	"UID":          {},
	"RELATED-TO":   {},
	"X-WR-CALNAME": {},
}

// A content line of a component. Values are stored encoded, so a property
// never changes after creation except through SetValue.
type Property struct {
	name   string
	values []string
	params []Param
}

// Get the property name, upper case
func (p *Property) Name() string {
	return p.name
}

// Get the encoded values. Multi-value properties such as CATEGORIES hold
// more than one.
func (p *Property) Values() []string {
	return append([]string(nil), p.values...)
}

// Get the encoded value as it appears after the colon
func (p *Property) Value() string {
	return strings.Join(p.values, ",")
}

// Get a copy of the parameters in rendering order
func (p *Property) Params() []Param {
	out := make([]Param, 0, len(p.params))
	for _, param := range p.params {
		out = append(out, Param{Name: param.Name, Values: append([]string(nil), param.Values...)})
	}
	return out
}

// Replace the value while keeping the parameters
func (p *Property) SetValue(value string) {
	p.values = []string{encodeValue(p.name, value)}
}

// Render the unfolded content line, e.g.
// `DTSTART;TZID=Europe/Berlin:20161212T110000`
func (p *Property) String() string {
	var sb strings.Builder
	sb.WriteString(p.name)
	for _, param := range p.params {
		sb.WriteString(";")
		sb.WriteString(param.String())
	}
	sb.WriteString(":")
	sb.WriteString(p.Value())
	return sb.String()
}

func encodeValue(name, value string) string {
	if _, ok := textProperties[name]; ok {
		return utils.EscapeText(value)
	}
	return value
}

// Create a property without attaching it anywhere. Parameter names are
// upper-cased and checked; URL gets `VALUE=URI` unless VALUE is given.
func newProperty(name string, values []string, params []Param) (*Property, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !utils.ValidParamName(name) {
		return nil, utils.InvalidArgument("invalid property name", map[string]any{"name": name})
	}
	if len(values) == 0 {
		return nil, utils.InvalidArgument("property without value", map[string]any{"name": name})
	}
	normalized, err := utils.NormalizeParams(params)
	if err != nil {
		return nil, err
	}
	if name == "URL" {
		if _, ok := utils.FindParam(normalized, "VALUE"); !ok {
			normalized = append(normalized, utils.NewParam("VALUE", "URI"))
		}
	}

	encoded := make([]string, 0, len(values))
	for _, v := range values {
		encoded = append(encoded, encodeValue(name, v))
	}
	return &Property{name: name, values: encoded, params: normalized}, nil
}
