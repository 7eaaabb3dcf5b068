package netmon

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tunwatch/tunwatch/service/mgr"
	"github.com/tunwatch/tunwatch/service/notifications"
)

type testInstance struct {
	notifs *notifications.Notifications
}

func (ti *testInstance) Notifications() *notifications.Notifications {
	return ti.notifs
}

var (
	testNotifsOnce sync.Once
	testNotifs     *notifications.Notifications
)

// sharedTestInstance returns a process-wide test instance, as the
// notifications module only allows a single instance.
func sharedTestInstance() *testInstance {
	testNotifsOnce.Do(func() {
		var err error
		testNotifs, err = notifications.New(nil)
		if err != nil {
			panic(err)
		}
	})
	return &testInstance{notifs: testNotifs}
}

// newTestMon returns a NetMon with fast timings and an empty interface
// directory, without registering it as the process-wide module.
// Notifications are discarded, use newTestMonWithNotifs to capture them.
func newTestMon(t *testing.T) *NetMon {
	t.Helper()
	return newTestMonInstance(t, &testInstance{})
}

// newTestMonWithNotifs returns a NetMon wired to the process-wide test
// notifications module.
func newTestMonWithNotifs(t *testing.T) *NetMon {
	t.Helper()
	return newTestMonInstance(t, sharedTestInstance())
}

func newTestMonInstance(t *testing.T, ti *testInstance) *NetMon {
	t.Helper()

	nm, err := newNetMon(ti)
	require.NoError(t, err, "creating netmon must succeed")

	nm.interfacesDir = t.TempDir()
	nm.connectivityRetryWait = 5 * time.Millisecond
	nm.connectivityTimeout = time.Second
	nm.ipEchoTimeout = time.Second
	nm.debounceDuration = 150 * time.Millisecond
	nm.notifyDelay = 5 * time.Millisecond

	t.Cleanup(nm.m.Cancel)
	return nm
}

// addTestInterface creates a fake network interface with the given
// operational state in the monitor's interface directory.
func addTestInterface(t *testing.T, nm *NetMon, name, operstate string) {
	t.Helper()

	dir := filepath.Join(nm.interfacesDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "operstate"), []byte(operstate+"\n"), 0o644))
}

// runResolve runs a resolution pass synchronously.
func runResolve(t *testing.T, nm *NetMon, trigger Trigger) {
	t.Helper()

	err := nm.m.Do("test resolve", func(w *mgr.WorkerCtx) error {
		nm.resolve(w, trigger)
		return nil
	})
	require.NoError(t, err)
}

// nextEvent waits for the next event on the given subscription.
func nextEvent[T any](t *testing.T, sub *mgr.EventSubscription[T], timeout time.Duration) (event T, ok bool) {
	t.Helper()

	select {
	case event = <-sub.Events():
		return event, true
	case <-time.After(timeout):
		return event, false
	}
}

// drainEvents returns all currently queued events on the subscription.
func drainEvents[T any](sub *mgr.EventSubscription[T]) []T {
	var events []T
	for {
		select {
		case event := <-sub.Events():
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestStateSnapshot(t *testing.T) {
	t.Parallel()

	nm := newTestMon(t)

	state := nm.State()
	require.True(t, state.Enabled)
	require.False(t, state.Resolving)
	require.Equal(t, StatusUnknown, state.Status)
	require.Zero(t, state.ProbeCount)
}

func TestSetEnabledEmitsDisabled(t *testing.T) {
	t.Parallel()

	nm := newTestMon(t)
	statusSub := nm.EventStatusChange.Subscribe("test", 16)

	nm.SetEnabled(false)
	status, ok := nextEvent(t, statusSub, time.Second)
	require.True(t, ok, "disabling must emit a status update")
	require.Equal(t, StatusDisabled, status)

	// Disabling again must not emit again.
	nm.SetEnabled(false)
	_, ok = nextEvent(t, statusSub, 50*time.Millisecond)
	require.False(t, ok, "repeated disable must not emit")
}
