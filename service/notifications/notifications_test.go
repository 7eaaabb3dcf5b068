package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(t *testing.T) *Notifications {
	t.Helper()

	n := newModule(nil)
	t.Cleanup(n.m.Cancel)
	return n
}

func TestNotify(t *testing.T) {
	t.Parallel()

	n := newTestModule(t)
	sub := n.EventNotify.Subscribe("test", 4)

	notif := n.NotifyInfo("test:hello", "Hello", "A routine message.")
	require.NotNil(t, notif)
	assert.NotEmpty(t, notif.GUID)
	assert.False(t, notif.IsCritical(), "info notifications expire")
	assert.LessOrEqual(t, notif.Expires, time.Now().Add(DefaultExpiry).Unix())

	select {
	case got := <-sub.Events():
		assert.Same(t, notif, got)
	case <-time.After(time.Second):
		t.Fatal("notification was not submitted")
	}

	assert.Same(t, notif, n.Get("test:hello"))
}

func TestNotifyErrorIsCritical(t *testing.T) {
	t.Parallel()

	n := newTestModule(t)

	notif := n.NotifyError("test:broken", "Broken", "Something went wrong.")
	require.NotNil(t, notif)
	assert.True(t, notif.IsCritical(), "error notifications do not expire")
	assert.Zero(t, notif.Expires)
}

func TestNotifyReplaces(t *testing.T) {
	t.Parallel()

	n := newTestModule(t)

	first := n.NotifyInfo("test:dup", "First", "one")
	second := n.NotifyInfo("test:dup", "Second", "two")

	assert.NotEqual(t, first.GUID, second.GUID, "each notification gets its own GUID")
	assert.Same(t, second, n.Get("test:dup"), "same event ID replaces the active notification")
}

func TestDismiss(t *testing.T) {
	t.Parallel()

	n := newTestModule(t)
	sub := n.EventDismiss.Subscribe("test", 4)

	n.NotifyError("test:gone", "Gone", "soon")
	n.Dismiss("test:gone")

	assert.Nil(t, n.Get("test:gone"))
	select {
	case eventID := <-sub.Events():
		assert.Equal(t, "test:gone", eventID)
	case <-time.After(time.Second):
		t.Fatal("dismiss was not submitted")
	}

	// Dismissing an unknown notification is a no-op.
	n.Dismiss("test:unknown")
	select {
	case eventID := <-sub.Events():
		t.Fatalf("unexpected dismiss event: %s", eventID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyRejectsEmptyEventID(t *testing.T) {
	t.Parallel()

	n := newTestModule(t)
	sub := n.EventNotify.Subscribe("test", 4)

	n.Notify(&Notification{Title: "No ID"})
	n.Notify(nil)

	select {
	case notif := <-sub.Events():
		t.Fatalf("unexpected notification: %+v", notif)
	case <-time.After(50 * time.Millisecond):
	}
}
