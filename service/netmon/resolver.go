package netmon

import (
	"fmt"

	"github.com/tunwatch/tunwatch/service/mgr"
	"github.com/tunwatch/tunwatch/service/notifications"
)

const vpnDroppedEventID = "netmon:vpn-dropped"

// resolve runs one full resolution pass: scan interfaces, probe
// connectivity, classify, and decide whether the result is externally
// significant. It is the sole critical section of the module. Entry is
// strictly serialized, concurrent invokers wait their turn and each runs
// the full pass to completion.
func (nm *NetMon) resolve(wc *mgr.WorkerCtx, trigger Trigger) {
	if !nm.enabled.IsSet() {
		return
	}

	nm.resolveLock.Lock()
	defer nm.resolveLock.Unlock()

	// A failed pass must never leave the session stuck in a resolving
	// state: degrade to offline and stay responsive.
	defer func() {
		if panicVal := recover(); panicVal != nil {
			wc.Error("status resolution failed", "err", panicVal)
			nm.addLog(fmt.Sprintf("critical failure during status resolution: %v", panicVal))
			nm.resolving.UnSet()
			nm.setLastStatus(StatusOffline)
			nm.EventStatusChange.Submit(StatusOffline)
		}
	}()

	// The emission decision below uses the resolving state as it was
	// before this pass: a forced pass announces itself, an auto pass was
	// already announced by the listener when it armed the debounce.
	wasResolving := nm.resolving.IsSet()
	if !wasResolving && trigger.Forced() {
		nm.resolving.Set()
		nm.EventStatusChange.Submit(StatusResolving)
	}

	hasActiveVPN := nm.scanInterfaces(wc)
	online := nm.checkReachable(wc)
	status := classify(hasActiveVPN, online)

	stateChanged := status != nm.getLastStatus()
	forced := trigger.Forced()

	if stateChanged || wasResolving || forced {
		nm.setLastStatus(status)
		nm.resolving.UnSet()
		nm.EventStatusChange.Submit(status)

		var ipSuffix string
		if status == StatusInsecure || (trigger == TriggerManual && online) {
			if ip, ok := nm.fetchPublicIP(wc); ok {
				ipSuffix = " (IP: " + ip + ")"
			}
		}
		nm.addLog(fmt.Sprintf("status: %s [%s]%s", status, trigger, ipSuffix))
		wc.Info("status resolved", "status", status, "trigger", trigger)
	} else {
		// Nothing externally significant, the pass still completed.
		nm.resolving.UnSet()
		wc.Debug("status unchanged", "status", status, "trigger", trigger)
	}

	switch {
	case status == StatusInsecure && (stateChanged || forced):
		// Let the primary status emission settle before alerting.
		// This delay is never canceled once armed.
		nm.m.Delay("vpn dropped notification", nm.notifyDelay, func(_ *mgr.WorkerCtx) error {
			nm.notifyVPNDropped()
			return nil
		})
	case status == StatusProtected:
		nm.dismissVPNDropped()
	}
}

func (nm *NetMon) notifyVPNDropped() {
	notifs := nm.instance.Notifications()
	if notifs == nil {
		return
	}
	notifs.Notify(&notifications.Notification{
		EventID: vpnDroppedEventID,
		Type:    notifications.Error,
		Title:   "VPN Dropped",
		Message: "Traffic is now exposed to the local network and your ISP.",
	})
}

func (nm *NetMon) dismissVPNDropped() {
	notifs := nm.instance.Notifications()
	if notifs == nil {
		return
	}
	notifs.Dismiss(vpnDroppedEventID)
}
