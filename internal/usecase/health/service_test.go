package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockBackend struct {
	name  string
	err   error
	delay time.Duration
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Ping(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New([]Backend{&mockBackend{name: "solr"}, &mockBackend{name: "pg"}}, 0)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["solr"] != CheckOK || r.Checks["pg"] != CheckOK {
		t.Errorf("unexpected checks: %v", r.Checks)
	}
}

func TestCheck_OneDown(t *testing.T) {
	svc := New([]Backend{
		&mockBackend{name: "solr", err: errors.New("conn refused")},
		&mockBackend{name: "pg"},
	}, 0)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["solr"] != CheckError {
		t.Errorf("expected solr %q, got %q", CheckError, r.Checks["solr"])
	}
	if r.Checks["pg"] != CheckOK {
		t.Errorf("expected pg %q, got %q", CheckOK, r.Checks["pg"])
	}
}

func TestCheck_AllDown(t *testing.T) {
	svc := New([]Backend{&mockBackend{name: "solr", err: errors.New("down")}}, 0)
	if r := svc.Check(context.Background()); r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoBackends(t *testing.T) {
	r := New(nil, 0).Check(context.Background())
	if r.Status != Degraded || len(r.Checks) != 0 {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestCheck_SlowPingTimesOut(t *testing.T) {
	svc := New([]Backend{&mockBackend{name: "slow", delay: time.Second}}, 20*time.Millisecond)

	start := time.Now()
	r := svc.Check(context.Background())
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("check waited too long: %v", time.Since(start))
	}
	if r.Checks["slow"] != CheckError {
		t.Errorf("expected timeout to fail the check, got %q", r.Checks["slow"])
	}
}
