package utils

import (
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	// case: defaults
	func() {
		for _, key := range []string{"PORT", "DATABASE_PATH", "API_TOKEN", "PRODID", "TZ_DIR",
			"TZ_REORDER_OBSERVANCES", "TIMEZONE", "CALDAV_URL", "CALDAV_CHECK_SCHEDULE",
			"DISCORD_APP_TOKEN", "DISCORD_CHANNEL_ID", "METRIC_COLLECTION_INTERVAL"} {
			t.Setenv(key, "")
		}
		c := NewConfig()
		if c.GetPort() != "8080" {
			t.Errorf("expected default port, got %q", c.GetPort())
		}
		if c.GetDatabasePath() != "./sqlite.db" {
			t.Errorf("expected default database path, got %q", c.GetDatabasePath())
		}
		if c.GetProdID() != "-//davcal//davcal//EN" {
			t.Errorf("expected default prodid, got %q", c.GetProdID())
		}
		if c.GetLocation() != time.UTC {
			t.Errorf("expected UTC, got %v", c.GetLocation())
		}
		if c.GetCaldavCheckSchedule() != "@every 5m" {
			t.Errorf("expected default schedule, got %q", c.GetCaldavCheckSchedule())
		}
		if c.GetMetricCollectionInterval() != 10*time.Second {
			t.Errorf("expected 10s, got %v", c.GetMetricCollectionInterval())
		}
		if c.GetTzReorderObservances() || c.GetTzDir() != "" || c.GetAPIToken() != "" {
			t.Error("expected optional settings to be empty")
		}
	}()

	// case: explicit values
	func() {
		dir := t.TempDir()
		t.Setenv("PORT", "9000")
		t.Setenv("TZ_DIR", dir)
		t.Setenv("TZ_REORDER_OBSERVANCES", "true")
		t.Setenv("TIMEZONE", "Europe/Berlin")
		t.Setenv("CALDAV_URL", "https://dav.example.com/")
		t.Setenv("CALDAV_CHECK_SCHEDULE", "*/10 * * * *")
		t.Setenv("API_TOKEN", "s3cret-token")
		t.Setenv("METRIC_COLLECTION_INTERVAL", "1m")
		c := NewConfig()
		if c.GetPort() != "9000" || c.GetTzDir() != dir || !c.GetTzReorderObservances() {
			t.Errorf("unexpected config %+v", c)
		}
		if c.GetLocation().String() != "Europe/Berlin" {
			t.Errorf("expected Europe/Berlin, got %v", c.GetLocation())
		}
		if c.GetCaldavURL() != "https://dav.example.com/" || c.GetCaldavCheckSchedule() != "*/10 * * * *" {
			t.Errorf("unexpected caldav settings %+v", c)
		}
		if c.GetAPIToken() != "s3cret-token" || c.GetMetricCollectionInterval() != time.Minute {
			t.Errorf("unexpected settings %+v", c)
		}
	}()
}

func TestSend(t *testing.T) {
	ch := make(chan float64, 1)
	Send(ch, 1)
	// full buffer drops the sample instead of blocking
	Send(ch, 2)
	if got := <-ch; got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	select {
	case v := <-ch:
		t.Errorf("unexpected sample %v", v)
	default:
	}
}

func TestGracefulShutdownChans(t *testing.T) {
	as := &AppState{}
	a := as.CreateGracefulShutdownChan()
	b := as.CreateGracefulShutdownChan()
	as.GracefulShutdown()
	for _, ch := range []*chan struct{}{a, b} {
		select {
		case <-*ch:
		case <-time.After(time.Second):
			t.Error("expected channel to be closed")
		}
	}
}
