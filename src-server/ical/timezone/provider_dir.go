package timezone

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"davcal/src-server/ical/utils"

	ics "github.com/arran4/golang-ical"
)

// Read definitions from `<dir>/<tzid>.ics` files, e.g.
// `zoneinfo/Europe/Berlin.ics`
type DirProvider struct {
	dir string
}

func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{dir: filepath.Clean(dir)}
}

func (p *DirProvider) Fetch(tzid string) (*Definition, error) {
	if !fs.ValidPath(tzid) || strings.Contains(tzid, `\`) {
		return nil, utils.LookupFailure("invalid time zone identifier", map[string]any{"tzid": tzid})
	}
	path := filepath.Join(p.dir, filepath.FromSlash(tzid)+".ics")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, utils.LookupFailure("no time zone file found for the given ID", map[string]any{"tzid": tzid})
		}
		return nil, utils.LookupFailure("can't open time zone file: "+err.Error(), map[string]any{"path": path})
	}
	defer f.Close()

	cal, err := ics.ParseCalendar(f)
	if err != nil {
		return nil, utils.LookupFailure("can't parse time zone file: "+err.Error(), map[string]any{"path": path})
	}
	for _, component := range cal.Components {
		if vtimezone, ok := component.(*ics.VTimezone); ok {
			return definitionFromVTimezone(vtimezone)
		}
	}
	return nil, utils.LookupFailure("time zone object could not be retrieved", map[string]any{"path": path})
}

func definitionFromVTimezone(vtimezone *ics.VTimezone) (*Definition, error) {
	var tzid string
	properties := make([]string, 0)
	for _, prop := range vtimezone.Properties {
		if strings.EqualFold(prop.IANAToken, "TZID") {
			tzid = prop.Value
			continue
		}
		properties = append(properties, propertyLine(prop.BaseProperty))
	}
	if tzid == "" {
		return nil, utils.LookupFailure("time zone has no TZID", nil)
	}

	observances := make([]Observance, 0, len(vtimezone.Components))
	for _, sub := range vtimezone.Components {
		var kind string
		var base ics.ComponentBase
		switch c := sub.(type) {
		case *ics.Standard:
			kind, base = KindStandard, c.ComponentBase
		case *ics.Daylight:
			kind, base = KindDaylight, c.ComponentBase
		case *ics.GeneralComponent:
			kind, base = strings.ToUpper(c.Token), c.ComponentBase
		default:
			continue
		}
		if kind != KindStandard && kind != KindDaylight {
			continue
		}
		lines := make([]string, 0, len(base.Properties))
		for _, prop := range base.Properties {
			lines = append(lines, propertyLine(prop.BaseProperty))
		}
		observances = append(observances, Observance{Kind: kind, Lines: lines})
	}
	if len(observances) == 0 {
		return nil, utils.LookupFailure("time zone has no observance", map[string]any{"tzid": tzid})
	}
	return NewDefinition(tzid, properties, observances), nil
}

func propertyLine(prop ics.BaseProperty) string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(prop.IANAToken))
	names := make([]string, 0, len(prop.ICalParameters))
	for name := range prop.ICalParameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(";")
		sb.WriteString(utils.NewParam(name, prop.ICalParameters[name]...).String())
	}
	sb.WriteString(":")
	sb.WriteString(prop.Value)
	return sb.String()
}
