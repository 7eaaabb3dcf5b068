package metrics

import (
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	c, err := NewCounter("test/probes/total")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(c.ID(), "test_probes_total") {
		t.Errorf("slashes must map to underscores, got %q", c.ID())
	}

	c.Inc()
	c.Inc()
	if c.CurrentValue() != 2 {
		t.Errorf("got %d, want 2", c.CurrentValue())
	}

	// Registering the same ID again returns the same underlying counter.
	again, err := NewCounter("test/probes/total")
	if err != nil {
		t.Fatal(err)
	}
	again.Inc()
	if c.CurrentValue() != 3 {
		t.Errorf("got %d, want 3", c.CurrentValue())
	}

	var b strings.Builder
	WritePrometheus(&b)
	if !strings.Contains(b.String(), c.ID()) {
		t.Errorf("exposition output must contain %q:\n%s", c.ID(), b.String())
	}
}

func TestNewCounterRejectsInvalidName(t *testing.T) {
	if _, err := NewCounter("test/probes per host"); err == nil {
		t.Error("invalid metric name must be rejected")
	}
}

func TestSetNamespaceRejectsInvalidName(t *testing.T) {
	if err := SetNamespace("bad namespace"); err == nil {
		t.Error("invalid namespace must be rejected")
	}
}
