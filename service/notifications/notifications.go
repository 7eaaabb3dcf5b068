package notifications

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tunwatch/tunwatch/base/utils"
	"github.com/tunwatch/tunwatch/service/mgr"
)

// ModuleName is the name of the notifications module.
const ModuleName = "notifications"

// DefaultExpiry is how long routine notifications are shown before they
// are dismissed automatically. Critical notifications do not expire.
const DefaultExpiry = 3 * time.Second

// Type describes the type of a notification.
type Type uint8

// Notification types.
const (
	Info    Type = 0
	Warning Type = 1
	Error   Type = 2
)

// Notification represents a notification that is to be delivered to the user.
type Notification struct {
	// EventID is used to identify a specific notification. It consists of
	// the module name and a per-module unique event id.
	// The following format is recommended:
	// 	<module-id>:<event-id>
	EventID string
	// GUID is a unique identifier for each notification instance. That is
	// two notifications with the same EventID must still have unique GUIDs.
	// It is automatically populated by the notifications module.
	GUID string
	// Type is the notification type. It can be one of Info, Warning or Error.
	Type Type
	// Title is a very short title for the message that gives a hint about
	// what the notification is about.
	Title string
	// Message is the message shown to the user.
	Message string
	// Expires holds the unix epoch timestamp at which the notification
	// expires and should be dismissed. Zero means the notification is
	// persistent and must be dismissed explicitly.
	Expires int64
}

// IsCritical returns whether the notification is persistent and must be
// dismissed explicitly by the user.
func (n *Notification) IsCritical() bool {
	return n.Expires == 0
}

// Notifications is the user notification module.
type Notifications struct {
	m        *mgr.Manager
	instance instance

	lock   sync.Mutex
	active map[string]*Notification

	// EventNotify is submitted for every notification that should be
	// shown to the user.
	EventNotify *mgr.EventMgr[*Notification]
	// EventDismiss is submitted with the EventID of every notification
	// that should be removed again.
	EventDismiss *mgr.EventMgr[string]
}

// Manager returns the module manager.
func (n *Notifications) Manager() *mgr.Manager {
	return n.m
}

// Start starts the module.
func (n *Notifications) Start() error {
	return nil
}

// Stop stops the module.
func (n *Notifications) Stop() error {
	return nil
}

// Notify sends the given notification to the user.
// A notification with the same EventID replaces the previous one.
// Notifications that are not critical are given the default expiry.
func (n *Notifications) Notify(notif *Notification) *Notification {
	if notif == nil || notif.EventID == "" {
		return notif
	}

	notif.GUID = utils.RandomUUID(notif.EventID).String()
	if notif.Type != Error && notif.Expires == 0 {
		notif.Expires = time.Now().Add(DefaultExpiry).Unix()
	}

	n.lock.Lock()
	n.active[notif.EventID] = notif
	n.lock.Unlock()

	n.m.Debug(
		"notifying user",
		"eventID", notif.EventID,
		"title", notif.Title,
		"critical", notif.IsCritical(),
	)
	n.EventNotify.Submit(notif)
	return notif
}

// NotifyError is a shortcut for a critical error notification.
func (n *Notifications) NotifyError(eventID, title, message string) *Notification {
	return n.Notify(&Notification{
		EventID: eventID,
		Type:    Error,
		Title:   title,
		Message: message,
	})
}

// NotifyInfo is a shortcut for a routine info notification.
func (n *Notifications) NotifyInfo(eventID, title, message string) *Notification {
	return n.Notify(&Notification{
		EventID: eventID,
		Type:    Info,
		Title:   title,
		Message: message,
	})
}

// Dismiss removes the notification with the given event ID, if present.
func (n *Notifications) Dismiss(eventID string) {
	n.lock.Lock()
	_, ok := n.active[eventID]
	delete(n.active, eventID)
	n.lock.Unlock()

	if ok {
		n.EventDismiss.Submit(eventID)
	}
}

// Get returns the active notification with the given event ID.
func (n *Notifications) Get(eventID string) *Notification {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.active[eventID]
}

var shimLoaded atomic.Bool

// New returns a new Notifications module.
func New(instance instance) (*Notifications, error) {
	if !shimLoaded.CompareAndSwap(false, true) {
		return nil, errors.New("only one instance allowed")
	}
	return newModule(instance), nil
}

func newModule(instance instance) *Notifications {
	m := mgr.New("Notifications")
	module := &Notifications{
		m:        m,
		instance: instance,

		active: make(map[string]*Notification),

		EventNotify:  mgr.NewEventMgr[*Notification]("notify", m),
		EventDismiss: mgr.NewEventMgr[string]("dismiss", m),
	}

	return module
}

type instance interface{}
