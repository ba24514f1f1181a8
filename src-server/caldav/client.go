// Package caldav is a thin CalDAV transport: discovery of the principal,
// calendar home set and calendars, plus PUT and DELETE of calendar objects.
package caldav

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"

	"github.com/emersion/go-webdav"
	gocaldav "github.com/emersion/go-webdav/caldav"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// Called after every request with the method, the status (0 on transport
// failure) and the round trip latency.
type Observer func(method string, status int, latency time.Duration)

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Whether the status is 2xx
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type Client struct {
	baseURL  *url.URL
	http     webdav.HTTPClient
	dav      *gocaldav.Client
	observer Observer
}

type ClientOption func(*Client)

// Use a custom HTTP client, basic auth is still layered on top of it
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithObserver(o Observer) ClientOption {
	return func(cl *Client) {
		cl.observer = o
	}
}

func NewClient(endpoint, username, password string, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, utils.InvalidArgument("invalid endpoint", map[string]any{"endpoint": endpoint, "error": err.Error()})
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, utils.InvalidArgument("endpoint should be an http(s) URL", map[string]any{"endpoint": endpoint})
	}
	if base.Path == "" {
		base.Path = "/"
	}

	c := &Client{baseURL: base, http: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	if username != "" {
		c.http = webdav.HTTPClientWithBasicAuth(c.http, username, password)
	}
	c.http = observedClient{inner: c.http, observer: c.observer}

	if c.dav, err = gocaldav.NewClient(c.http, base.String()); err != nil {
		return nil, fmt.Errorf("can't create caldav client: %w", err)
	}
	return c, nil
}

// Get the endpoint the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Resolve a path or absolute URL against the endpoint
func (c *Client) Resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", utils.InvalidArgument("invalid url", map[string]any{"url": target, "error": err.Error()})
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// Send a raw request. The method must be one a CalDAV server understands.
func (c *Client) Request(ctx context.Context, method, target string, body []byte, header http.Header) (*Response, error) {
	method = strings.ToUpper(method)
	if !vocab.HTTPMethod.Has(method) {
		return nil, utils.InvalidArgument("unsupported http method", map[string]any{"method": method})
	}
	resolved, err := c.Resolve(target)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, resolved, reader)
	if err != nil {
		return nil, fmt.Errorf("can't create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, resolved, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read response body: %w", err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Get the DAV compliance classes advertised by the endpoint
func (c *Client) Options(ctx context.Context) ([]string, error) {
	resp, err := c.Request(ctx, http.MethodOptions, "", nil, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: OPTIONS returned %d", ErrUnexpectedStatus, resp.Status)
	}
	classes := []string{}
	for _, line := range resp.Header.Values("DAV") {
		for _, class := range strings.Split(line, ",") {
			if class = strings.TrimSpace(class); class != "" {
				classes = append(classes, class)
			}
		}
	}
	return classes, nil
}

// Whether the endpoint answers OPTIONS with calendar-access
func (c *Client) IsValidConnection(ctx context.Context) bool {
	classes, err := c.Options(ctx)
	if err != nil {
		slog.Warn("caldav connection check failed", "endpoint", c.BaseURL(), "error", err)
		return false
	}
	for _, class := range classes {
		if strings.EqualFold(class, "calendar-access") {
			return true
		}
	}
	return false
}

type observedClient struct {
	inner    webdav.HTTPClient
	observer Observer
}

func (o observedClient) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := o.inner.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	slog.Debug("caldav request", "method", req.Method, "url", req.URL.String(), "status", status)
	if o.observer != nil {
		o.observer(req.Method, status, time.Since(start))
	}
	return resp, err
}
