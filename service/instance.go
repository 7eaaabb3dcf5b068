package service

import (
	"fmt"

	"github.com/tunwatch/tunwatch/service/mgr"
	"github.com/tunwatch/tunwatch/service/netmon"
	"github.com/tunwatch/tunwatch/service/notifications"
)

// Instance is an instance of the tunwatch service.
type Instance struct {
	*mgr.Group

	version string

	notifications *notifications.Notifications
	netmon        *netmon.NetMon
}

// New returns a new tunwatch service instance.
func New(version string) (*Instance, error) {
	// Create instance to pass it to modules.
	instance := &Instance{
		version: version,
	}

	var err error
	instance.notifications, err = notifications.New(instance)
	if err != nil {
		return nil, fmt.Errorf("create notifications module: %w", err)
	}
	instance.netmon, err = netmon.New(instance)
	if err != nil {
		return nil, fmt.Errorf("create netmon module: %w", err)
	}

	// Add all modules to instance group.
	instance.Group = mgr.NewGroup(
		instance.notifications,
		instance.netmon,
	)

	return instance, nil
}

// Version returns the version.
func (i *Instance) Version() string {
	return i.version
}

// Notifications returns the notifications module.
func (i *Instance) Notifications() *notifications.Notifications {
	return i.notifications
}

// NetMon returns the network monitor module.
func (i *Instance) NetMon() *netmon.NetMon {
	return i.netmon
}
