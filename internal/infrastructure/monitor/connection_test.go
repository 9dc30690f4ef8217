package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
)

func staticProbe(name string, optional bool, err error) Probe {
	return Probe{
		Name:     name,
		Optional: optional,
		Check:    func(context.Context) error { return err },
	}
}

func TestRefresh(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name    string
		probes  []Probe
		healthy bool
	}{
		{"no probes", nil, true},
		{"all up", []Probe{staticProbe("store", false, nil), staticProbe("redis", true, nil)}, true},
		{"optional down", []Probe{staticProbe("store", false, nil), staticProbe("redis", true, down)}, true},
		{"required down", []Probe{staticProbe("store", false, down), staticProbe("redis", true, nil)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(time.Minute, nil, tt.probes...)
			status := m.Refresh(context.Background())
			if status.Healthy != tt.healthy {
				t.Errorf("healthy = %v, want %v", status.Healthy, tt.healthy)
			}
			if m.IsOnline() != tt.healthy {
				t.Errorf("IsOnline = %v, want %v", m.IsOnline(), tt.healthy)
			}
			if len(status.Services) != len(tt.probes) {
				t.Errorf("services = %v", status.Services)
			}
		})
	}
}

func TestGetStatusReturnsCopy(t *testing.T) {
	m := New(time.Minute, nil, staticProbe("store", false, nil))
	m.Refresh(context.Background())

	snapshot := m.GetStatus()
	snapshot.Services["store"] = false

	if !m.GetStatus().Services["store"] {
		t.Error("mutating a snapshot changed the monitor state")
	}
}

func TestBoltProbe(t *testing.T) {
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "probe.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	m := New(time.Minute, nil, BoltProbe(db))
	if !m.Refresh(context.Background()).Healthy {
		t.Fatal("open database reported unhealthy")
	}

	db.Close()
	if m.Refresh(context.Background()).Healthy {
		t.Error("closed database reported healthy")
	}
}

func TestStartAndStop(t *testing.T) {
	m := New(time.Second, nil, staticProbe("store", false, nil))
	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.GetStatus().LastCheck.IsZero() {
		t.Error("Start did not run an initial probe round")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(ctx); err != nil {
		t.Errorf("stop: %v", err)
	}
}
