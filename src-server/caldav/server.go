package caldav

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"davcal/src-server/ical/utils"
)

const currentUserPrincipalBody = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:"><d:prop><d:current-user-principal/></d:prop></d:propfind>`

type principalMultistatus struct {
	XMLName   xml.Name `xml:"DAV: multistatus"`
	Responses []struct {
		Propstats []struct {
			Status string `xml:"DAV: status"`
			Href   string `xml:"DAV: prop>current-user-principal>href"`
		} `xml:"DAV: propstat"`
	} `xml:"DAV: response"`
}

// The CalDAV server behind a client's endpoint
type Server struct {
	client *Client
}

func NewServer(client *Client) *Server {
	return &Server{client: client}
}

func (s *Server) Client() *Client {
	return s.client
}

// Whether the server speaks CalDAV and exposes a current-user-principal
func (s *Server) IsValid(ctx context.Context) bool {
	if !s.client.IsValidConnection(ctx) {
		return false
	}
	if _, err := s.Principal(ctx); err != nil {
		slog.Warn("caldav server has no usable principal", "endpoint", s.client.BaseURL(), "error", err)
		return false
	}
	return true
}

// Get the principal of the authenticated user. The PROPFIND targets the
// endpoint exactly as configured, trailing slash included.
func (s *Server) Principal(ctx context.Context) (*Principal, error) {
	header := http.Header{}
	header.Set("Depth", "0")
	header.Set("Content-Type", "application/xml; charset=utf-8")
	resp, err := s.client.Request(ctx, "PROPFIND", "", []byte(currentUserPrincipalBody), header)
	if err != nil {
		return nil, fmt.Errorf("can't find current-user-principal: %w", err)
	}
	if resp.Status != http.StatusMultiStatus {
		return nil, fmt.Errorf("can't find current-user-principal: %w: PROPFIND returned %d", ErrUnexpectedStatus, resp.Status)
	}
	href, err := parsePrincipalHref(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't find current-user-principal: %w", err)
	}
	if href == "" {
		return nil, utils.InvalidState("server returned an empty current-user-principal", map[string]any{"endpoint": s.client.BaseURL()})
	}
	return NewPrincipal(s.client, href)
}

// Get every principal reachable from the endpoint. Servers only expose the
// authenticated user, so this is a list of one.
func (s *Server) Principals(ctx context.Context) ([]*Principal, error) {
	p, err := s.Principal(ctx)
	if err != nil {
		return nil, err
	}
	return []*Principal{p}, nil
}

// First current-user-principal href reported with a 200 propstat, reduced to
// its path
func parsePrincipalHref(body []byte) (string, error) {
	var ms principalMultistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return "", fmt.Errorf("malformed multistatus: %w", err)
	}
	for _, r := range ms.Responses {
		for _, ps := range r.Propstats {
			href := strings.TrimSpace(ps.Href)
			if href == "" || (ps.Status != "" && !strings.Contains(ps.Status, " 200")) {
				continue
			}
			u, err := url.Parse(href)
			if err != nil {
				return "", utils.InvalidState("malformed current-user-principal", map[string]any{"href": href})
			}
			return u.Path, nil
		}
	}
	return "", nil
}
