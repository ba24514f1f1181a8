package caldav

import (
	"context"
	"fmt"
	"strings"

	"davcal/src-server/ical/utils"
)

type Principal struct {
	client *Client
	url    string
}

func NewPrincipal(client *Client, url string) (*Principal, error) {
	if strings.TrimSpace(url) == "" {
		return nil, utils.InvalidArgument("principal url is required", nil)
	}
	return &Principal{client: client, url: url}, nil
}

func (p *Principal) URL() string {
	return p.url
}

// Get the calendar-home-set of the principal
func (p *Principal) HomeSetURL(ctx context.Context) (string, error) {
	home, err := p.client.dav.FindCalendarHomeSet(ctx, p.url)
	if err != nil {
		return "", fmt.Errorf("can't find calendar-home-set: %w", err)
	}
	if home == "" {
		return "", utils.InvalidState("unable to determine a valid calendar-home-set url", map[string]any{"principal": p.url})
	}
	return home, nil
}

// List the calendars under the home set, skipping the ones without a
// display name
func (p *Principal) Calendars(ctx context.Context) ([]*Calendar, error) {
	home, err := p.HomeSetURL(ctx)
	if err != nil {
		return nil, err
	}
	found, err := p.client.dav.FindCalendars(ctx, home)
	if err != nil {
		return nil, fmt.Errorf("can't list calendars: %w", err)
	}
	calendars := make([]*Calendar, 0, len(found))
	for _, f := range found {
		if strings.TrimSpace(f.Name) == "" {
			continue
		}
		cal, err := NewCalendar(p.client, f.Path, f.Name)
		if err != nil {
			return nil, err
		}
		cal.description = f.Description
		calendars = append(calendars, cal)
	}
	return calendars, nil
}
