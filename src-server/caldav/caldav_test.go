package caldav

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"davcal/src-server/ical"
	"davcal/src-server/ical/utils"
)

const principalXML = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/dav/</d:href>
    <d:propstat>
      <d:prop>
        <d:current-user-principal><d:href>/dav/principals/jane/</d:href></d:current-user-principal>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

const homeSetXML = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/dav/principals/jane/</d:href>
    <d:propstat>
      <d:prop>
        <c:calendar-home-set><d:href>/dav/calendars/jane/</d:href></c:calendar-home-set>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

const calendarsXML = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/dav/calendars/jane/</d:href>
    <d:propstat>
      <d:prop>
        <d:resourcetype><d:collection/></d:resourcetype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/calendars/jane/work/</d:href>
    <d:propstat>
      <d:prop>
        <d:resourcetype><d:collection/><c:calendar/></d:resourcetype>
        <d:displayname>Work</d:displayname>
        <c:calendar-description>Office hours</c:calendar-description>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/calendars/jane/hidden/</d:href>
    <d:propstat>
      <d:prop>
        <d:resourcetype><d:collection/><c:calendar/></d:resourcetype>
        <d:displayname></d:displayname>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

type recorded struct {
	method string
	path   string
	header http.Header
	body   string
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recorded
	dav      string
	root     string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{r.Method, r.URL.Path, r.Header.Clone(), string(body)})
	f.mu.Unlock()

	if user, pass, ok := r.BasicAuth(); !ok || user != "jane" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	multistatus := func(payload string) {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusMultiStatus)
		io.WriteString(w, payload)
	}

	switch {
	case r.Method == http.MethodOptions:
		w.Header().Set("DAV", f.dav)
		w.WriteHeader(http.StatusOK)
	case r.Method == "PROPFIND" && r.URL.Path == f.root:
		multistatus(principalXML)
	case r.Method == "PROPFIND" && r.URL.Path == "/dav/principals/jane/":
		multistatus(homeSetXML)
	case r.Method == "PROPFIND" && r.URL.Path == "/dav/calendars/jane/":
		multistatus(calendarsXML)
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/stale.ics"):
		w.WriteHeader(http.StatusPreconditionFailed)
	case r.Method == http.MethodPut:
		w.Header().Set("ETag", `"1"`)
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newFake(t *testing.T, dav string) (*fakeServer, *Client) {
	t.Helper()
	return newFakeAt(t, dav, "/dav/")
}

// Serve the principal lookup only on root, which is also the client endpoint
func newFakeAt(t *testing.T, dav, root string) (*fakeServer, *Client) {
	t.Helper()
	fake := &fakeServer{dav: dav, root: root}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL+root, "jane", "secret")
	if err != nil {
		t.Fatal(err)
	}
	return fake, client
}

func TestNewClient(t *testing.T) {
	for _, endpoint := range []string{"ftp://example.com/", "://bad", "example.com/dav"} {
		if _, err := NewClient(endpoint, "", ""); !errors.Is(err, utils.ErrInvalidArgument) {
			t.Errorf("expected invalid argument for %q, got %v", endpoint, err)
		}
	}
}

func TestRequest(t *testing.T) {
	ctx := context.Background()
	func() {
		_, client := newFake(t, "1, 2")
		if _, err := client.Request(ctx, "BREW", "", nil, nil); !errors.Is(err, utils.ErrInvalidArgument) {
			t.Errorf("expected invalid argument for BREW, got %v", err)
		}
	}()
	func() {
		fake, client := newFake(t, "1, 2")
		resp, err := client.Request(ctx, "delete", "calendars/jane/work/a.ics", nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Status != http.StatusNoContent || !resp.OK() {
			t.Errorf("unexpected status %d", resp.Status)
		}
		if got := fake.last(); got.method != http.MethodDelete || got.path != "/dav/calendars/jane/work/a.ics" {
			t.Errorf("unexpected request %+v", got)
		}
	}()
}

func TestIsValidConnection(t *testing.T) {
	ctx := context.Background()
	func() {
		_, client := newFake(t, "1, 2, access-control, calendar-access")
		if !client.IsValidConnection(ctx) {
			t.Error("expected a valid connection")
		}
		classes, err := client.Options(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(classes) != 4 || classes[3] != "calendar-access" {
			t.Errorf("unexpected classes %v", classes)
		}
	}()
	func() {
		_, client := newFake(t, "1, 2, addressbook")
		if client.IsValidConnection(ctx) {
			t.Error("expected an invalid connection")
		}
	}()
	func() {
		srv := httptest.NewServer(&fakeServer{dav: "calendar-access", root: "/dav/"})
		defer srv.Close()
		client, err := NewClient(srv.URL+"/dav/", "jane", "wrong")
		if err != nil {
			t.Fatal(err)
		}
		if client.IsValidConnection(ctx) {
			t.Error("expected unauthorized connection to be invalid")
		}
	}()
}

func TestDiscovery(t *testing.T) {
	ctx := context.Background()
	_, client := newFake(t, "1, calendar-access")
	server := NewServer(client)
	if !server.IsValid(ctx) {
		t.Fatal("expected a valid server")
	}

	principals, err := server.Principals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(principals) != 1 || principals[0].URL() != "/dav/principals/jane/" {
		t.Fatalf("unexpected principals %v", principals)
	}

	home, err := principals[0].HomeSetURL(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if home != "/dav/calendars/jane/" {
		t.Errorf("unexpected home set %q", home)
	}

	calendars, err := principals[0].Calendars(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(calendars) != 1 {
		t.Fatalf("expected only the named calendar, got %d", len(calendars))
	}
	if calendars[0].URL() != "/dav/calendars/jane/work/" || calendars[0].DisplayName() != "Work" {
		t.Errorf("unexpected calendar %q %q", calendars[0].URL(), calendars[0].DisplayName())
	}
	if calendars[0].Description() != "Office hours" {
		t.Errorf("unexpected description %q", calendars[0].Description())
	}
}

func TestPrincipalEndpointPath(t *testing.T) {
	ctx := context.Background()
	for _, root := range []string{"/dav/", "/dav"} {
		func() {
			fake, client := newFakeAt(t, "1, calendar-access", root)
			principal, err := NewServer(client).Principal(ctx)
			if err != nil {
				t.Fatalf("%s: %v", root, err)
			}
			if principal.URL() != "/dav/principals/jane/" {
				t.Errorf("%s: unexpected principal %q", root, principal.URL())
			}
			got := fake.last()
			if got.method != "PROPFIND" || got.path != root {
				t.Errorf("%s: unexpected request %s %s", root, got.method, got.path)
			}
			if got.header.Get("Depth") != "0" || !strings.Contains(got.body, "current-user-principal") {
				t.Errorf("%s: unexpected propfind %q %q", root, got.header.Get("Depth"), got.body)
			}
		}()
	}

	func() {
		srv := httptest.NewServer(&fakeServer{dav: "calendar-access", root: "/dav/"})
		defer srv.Close()
		client, err := NewClient(srv.URL+"/other/", "jane", "secret")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := NewServer(client).Principal(ctx); !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected unexpected status, got %v", err)
		}
	}()
}

func TestParsePrincipalHref(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{principalXML, "/dav/principals/jane/"},
		{`<d:multistatus xmlns:d="DAV:"><d:response><d:href>/</d:href><d:propstat><d:prop><d:current-user-principal><d:href>https://cal.example.com/p/1/</d:href></d:current-user-principal></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response></d:multistatus>`, "/p/1/"},
		{`<d:multistatus xmlns:d="DAV:"><d:response><d:href>/</d:href><d:propstat><d:prop><d:current-user-principal/></d:prop><d:status>HTTP/1.1 404 Not Found</d:status></d:propstat></d:response></d:multistatus>`, ""},
	}
	for _, c := range cases {
		got, err := parsePrincipalHref([]byte(c.body))
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("expected %q, got %q", c.want, got)
		}
	}
	if _, err := parsePrincipalHref([]byte("not xml")); err == nil {
		t.Error("expected an error for a malformed body")
	}
}

func TestSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	fake, client := newFake(t, "calendar-access")
	cal, err := NewCalendar(client, "/dav/calendars/jane/work", "Work")
	if err != nil {
		t.Fatal(err)
	}

	doc := ical.NewDocument(nil, ical.WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}))
	ev := doc.AddEvent()
	if err := ev.SetSummary("Standup"); err != nil {
		t.Fatal(err)
	}

	resp, err := cal.Save(ctx, doc, "standup.ics", "")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusCreated || resp.Header.Get("ETag") != `"1"` {
		t.Errorf("unexpected response %d %q", resp.Status, resp.Header.Get("ETag"))
	}
	got := fake.last()
	if got.path != "/dav/calendars/jane/work/standup.ics" {
		t.Errorf("unexpected path %q", got.path)
	}
	if !strings.HasPrefix(got.header.Get("Content-Type"), "text/calendar") {
		t.Errorf("unexpected content type %q", got.header.Get("Content-Type"))
	}
	if got.header.Get("If-Match") != "" {
		t.Error("If-Match should not be sent without an etag")
	}
	if !strings.HasPrefix(got.body, "BEGIN:VCALENDAR\r\n") || !strings.Contains(got.body, "SUMMARY:Standup\r\n") {
		t.Errorf("unexpected body %q", got.body)
	}

	if _, err := cal.Save(ctx, doc, "standup.ics", `"1"`); err != nil {
		t.Fatal(err)
	}
	if got := fake.last(); got.header.Get("If-Match") != `"1"` {
		t.Errorf("expected If-Match, got %q", got.header.Get("If-Match"))
	}

	resp, err = cal.Save(ctx, doc, "stale.ics", `"0"`)
	if !errors.Is(err, ErrUnexpectedStatus) || resp == nil || resp.Status != http.StatusPreconditionFailed {
		t.Errorf("expected precondition failure, got %v", err)
	}

	if _, err := cal.Save(ctx, doc, "../escape.ics", ""); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Errorf("expected invalid file name, got %v", err)
	}

	if _, err := cal.Delete(ctx, "standup.ics"); err != nil {
		t.Fatal(err)
	}
	if got := fake.last(); got.method != http.MethodDelete || got.path != "/dav/calendars/jane/work/standup.ics" {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestObserver(t *testing.T) {
	fake := &fakeServer{dav: "calendar-access", root: "/dav/"}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	var methods []string
	var statuses []int
	client, err := NewClient(srv.URL+"/dav/", "jane", "secret", WithObserver(func(method string, status int, _ time.Duration) {
		methods = append(methods, method)
		statuses = append(statuses, status)
	}))
	if err != nil {
		t.Fatal(err)
	}
	client.IsValidConnection(context.Background())
	if len(methods) != 1 || methods[0] != http.MethodOptions || statuses[0] != http.StatusOK {
		t.Errorf("unexpected observations %v %v", methods, statuses)
	}
}
