package utils

import (
	"strings"
)

// A property parameter. Multi-valued parameters such as MEMBER keep the
// order in which values were added, duplicates included.
type Param struct {
	Name   string
	Values []string
}

func NewParam(name string, values ...string) Param {
	return Param{Name: strings.ToUpper(strings.TrimSpace(name)), Values: values}
}

// Render the parameter as `NAME=value[,value...]`
func (p Param) String() string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(p.Name))
	sb.WriteString("=")
	for i, v := range p.Values {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(QuoteParamValue(v))
	}
	return sb.String()
}

// Quote a parameter value when it holds characters that are not allowed in
// a bare param-value. Caret, newline and DQUOTE are encoded per RFC6868.
func QuoteParamValue(v string) string {
	if !strings.ContainsAny(v, "\n\":;^,+") {
		return v
	}
	r := strings.NewReplacer("^", "^^", "\n", "^n", "\"", "^'")
	return "\"" + r.Replace(v) + "\""
}

// Check that a parameter name is an iana-token or x-name
func ValidParamName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}

// Validate a list of parameters and return a normalized copy
func NormalizeParams(params []Param) ([]Param, error) {
	out := make([]Param, 0, len(params))
	for _, p := range params {
		name := strings.ToUpper(strings.TrimSpace(p.Name))
		if !ValidParamName(name) {
			return nil, InvalidArgument("invalid parameter name", map[string]any{"name": p.Name})
		}
		if len(p.Values) == 0 {
			return nil, InvalidArgument("parameter without value", map[string]any{"name": name})
		}
		out = append(out, Param{Name: name, Values: append([]string(nil), p.Values...)})
	}
	return out, nil
}

// Find a parameter by name, case-insensitive
func FindParam(params []Param, name string) (Param, bool) {
	for _, p := range params {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Param{}, false
}

// Report whether the parameter is present with the given single value,
// both compared case-insensitively
func HasParamValue(params []Param, name, value string) bool {
	p, ok := FindParam(params, name)
	if !ok {
		return false
	}
	for _, v := range p.Values {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// Set a parameter, replacing the first one with the same name in place or
// appending it
func SetParam(params []Param, name string, values ...string) []Param {
	for i, p := range params {
		if strings.EqualFold(p.Name, name) {
			params[i] = NewParam(name, values...)
			return params
		}
	}
	return append(params, NewParam(name, values...))
}

// Remove every parameter with the given name
func RemoveParam(params []Param, name string) []Param {
	out := params[:0]
	for _, p := range params {
		if !strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out
}
