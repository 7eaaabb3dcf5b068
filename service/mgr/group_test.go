package mgr

import (
	"errors"
	"testing"
)

type testModule struct {
	m        *Manager
	startErr error
	started  bool
	stopped  bool
}

func (tm *testModule) Manager() *Manager { return tm.m }

func (tm *testModule) Start() error {
	tm.started = true
	return tm.startErr
}

func (tm *testModule) Stop() error {
	tm.stopped = true
	return nil
}

func TestGroupLifecycle(t *testing.T) {
	t.Parallel()

	a := &testModule{m: New("a")}
	b := &testModule{m: New("b")}
	g := NewGroup(a, b)

	if g.Ready() {
		t.Error("group must not be ready before start")
	}
	if len(g.Modules()) != 2 {
		t.Errorf("got %d modules, want 2", len(g.Modules()))
	}

	if err := g.Start(); err != nil {
		t.Fatalf("start failed: %s", err)
	}
	if !g.Ready() {
		t.Error("group must be ready after start")
	}
	if !a.started || !b.started {
		t.Error("all modules must be started")
	}

	// Starting a running group is a no-op.
	if err := g.Start(); err != nil {
		t.Errorf("starting a running group must succeed: %s", err)
	}

	if err := g.Stop(); err != nil {
		t.Fatalf("stop failed: %s", err)
	}
	if g.Ready() {
		t.Error("group must not be ready after stop")
	}
	if !a.stopped || !b.stopped {
		t.Error("all modules must be stopped")
	}
}

func TestGroupStartFailureRollsBack(t *testing.T) {
	t.Parallel()

	a := &testModule{m: New("a")}
	b := &testModule{m: New("b"), startErr: errors.New("test error")}
	g := NewGroup(a, b)

	if err := g.Start(); err == nil {
		t.Fatal("start must fail when a module fails")
	}
	if g.Ready() {
		t.Error("group must not be ready after a failed start")
	}
	if !a.stopped {
		t.Error("previously started modules must be stopped again")
	}
}

func TestGroupIgnoresNilModules(t *testing.T) {
	t.Parallel()

	var typedNil *testModule
	g := NewGroup(nil, typedNil, &testModule{m: New("a")})

	if len(g.Modules()) != 1 {
		t.Errorf("got %d modules, want 1", len(g.Modules()))
	}
}
