package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.yaml")
	if err := os.WriteFile(path, []byte(`
events:
  - operations:
      - op: setSummary
        args: [Review]
      - op: setDateStart
        args: [{date: "2026-07-01T15:00:00"}]
`), 0o644); err != nil {
		t.Fatal(err)
	}

	// case: file with a default zone
	func() {
		var out bytes.Buffer
		err := newApp(strings.NewReader(""), &out).Run([]string{"davcal-render", "--file", path, "--timezone", "America/New_York", "--prodid", "-//test//EN"})
		if err != nil {
			t.Fatal(err)
		}
		got := out.String()
		for _, want := range []string{
			"PRODID:-//test//EN\r\n",
			"TZID:America/New_York\r\n",
			"DTSTART;TZID=America/New_York:20260701T150000\r\n",
			"SUMMARY:Review\r\n",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in\n%s", want, got)
			}
		}
		if !strings.HasSuffix(got, "END:VCALENDAR\r\n") {
			t.Error("expected a complete document")
		}
	}()

	// case: json on stdin
	func() {
		var out bytes.Buffer
		in := strings.NewReader(`{"todos":[{"operations":[{"op":"setSummary","args":["Stdin"]}]}]}`)
		if err := newApp(in, &out).Run([]string{"davcal-render", "-f", "-", "--format", "json"}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "BEGIN:VTODO\r\n") || !strings.Contains(out.String(), "SUMMARY:Stdin\r\n") {
			t.Errorf("unexpected output\n%s", out.String())
		}
	}()

	// case: failures
	func() {
		var out bytes.Buffer
		if err := newApp(strings.NewReader(""), &out).Run([]string{"davcal-render", "--file", filepath.Join(dir, "missing.yaml")}); err == nil {
			t.Error("expected a missing file to fail")
		}
		if err := newApp(strings.NewReader(""), &out).Run([]string{"davcal-render", "--file", path, "--timezone", "Mars/Olympus"}); err == nil {
			t.Error("expected an unknown zone to fail")
		}
	}()
}
