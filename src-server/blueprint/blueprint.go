// Package blueprint describes a calendar document declaratively, as JSON or
// YAML, and builds it through the Apply operations of the ical package.
//
//	prodid: -//acme//planner//EN
//	events:
//	  - operations:
//	      - op: setSummary
//	        args: ["Standup"]
//	      - op: setDateStart
//	        args: [{date: "tomorrow at 9am", tzid: Europe/Berlin}]
//	    alarms:
//	      - operations:
//	          - op: setAction
//	            args: [DISPLAY]
//	          - op: setTriggerBefore
//	            args: [{duration: 15m}]
package blueprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"davcal/src-server/ical/utils"

	"gopkg.in/yaml.v3"
)

type Blueprint struct {
	ProdID string      `json:"prodid,omitempty" yaml:"prodid,omitempty"`
	Method string      `json:"method,omitempty" yaml:"method,omitempty"`
	Name   string      `json:"name,omitempty" yaml:"name,omitempty"`
	Events []Component `json:"events,omitempty" yaml:"events,omitempty"`
	Todos  []Component `json:"todos,omitempty" yaml:"todos,omitempty"`
}

type Component struct {
	Operations []Operation `json:"operations" yaml:"operations"`
	Alarms     []Alarm     `json:"alarms,omitempty" yaml:"alarms,omitempty"`
}

type Alarm struct {
	Operations []Operation `json:"operations" yaml:"operations"`
}

// One Apply call. Args hold scalars, lists or typed objects keyed by one of
// date, duration, period, rrule, attendee, organizer or contact. Params map
// a parameter name to a string or a list of strings.
type Operation struct {
	Op     string         `json:"op" yaml:"op"`
	Args   []any          `json:"args,omitempty" yaml:"args,omitempty"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Decode a JSON blueprint. Numbers are kept as json.Number so integers and
// fractions stay distinguishable.
func ParseJSON(data []byte) (*Blueprint, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	bp := &Blueprint{}
	if err := dec.Decode(bp); err != nil {
		return nil, utils.InvalidArgument("invalid json blueprint", map[string]any{"error": err.Error()})
	}
	return bp, nil
}

func ParseYAML(data []byte) (*Blueprint, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	bp := &Blueprint{}
	if err := dec.Decode(bp); err != nil {
		return nil, utils.InvalidArgument("invalid yaml blueprint", map[string]any{"error": err.Error()})
	}
	return bp, nil
}

// Decode by content type or file extension: anything mentioning json is
// JSON, the rest is YAML
func Parse(data []byte, format string) (*Blueprint, error) {
	if strings.Contains(strings.ToLower(format), "json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// Read and decode a blueprint file
func Load(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read blueprint: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}
