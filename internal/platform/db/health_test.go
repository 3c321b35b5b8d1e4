package db

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPoolHealth_Fields(t *testing.T) {
	health := &PoolHealth{
		TotalConns:      10,
		IdleConns:       5,
		AcquiredConns:   5,
		MaxConns:        20,
		AcquireCount:    100,
		AcquireDuration: "1.5s",
		Healthy:         true,
	}

	if health.TotalConns != 10 {
		t.Errorf("TotalConns = %d, want 10", health.TotalConns)
	}
	if health.IdleConns != 5 {
		t.Errorf("IdleConns = %d, want 5", health.IdleConns)
	}
	if health.AcquiredConns != 5 {
		t.Errorf("AcquiredConns = %d, want 5", health.AcquiredConns)
	}
	if health.MaxConns != 20 {
		t.Errorf("MaxConns = %d, want 20", health.MaxConns)
	}
	if health.AcquireCount != 100 {
		t.Errorf("AcquireCount = %d, want 100", health.AcquireCount)
	}
	if health.AcquireDuration != "1.5s" {
		t.Errorf("AcquireDuration = %q, want 1.5s", health.AcquireDuration)
	}
	if !health.Healthy {
		t.Error("Healthy should be true")
	}
}

func TestPoolHealth_EmptyPoolIsUnhealthy(t *testing.T) {
	health := &PoolHealth{
		TotalConns:      0,
		MaxConns:        20,
		AcquireDuration: "0s",
		Healthy:         false,
	}

	if health.Healthy {
		t.Error("a pool with no open connections must not report healthy")
	}
}

func TestPoolHealth_JSONShape(t *testing.T) {
	health := PoolHealth{
		TotalConns:      1,
		IdleConns:       1,
		MaxConns:        10,
		AcquireCount:    50,
		AcquireDuration: "250ms",
		Healthy:         true,
	}

	raw, err := json.Marshal(health)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{
		"total_conns", "idle_conns", "acquired_conns",
		"max_conns", "acquire_count", "acquire_duration", "healthy",
	} {
		if !strings.Contains(string(raw), `"`+key+`"`) {
			t.Errorf("payload missing key %q: %s", key, raw)
		}
	}
}
