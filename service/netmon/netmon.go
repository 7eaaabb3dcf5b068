package netmon

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tevino/abool"

	"github.com/tunwatch/tunwatch/base/metrics"
	"github.com/tunwatch/tunwatch/service/mgr"
	"github.com/tunwatch/tunwatch/service/notifications"
)

// ModuleName is the name of the network monitor module.
const ModuleName = "netmon"

// notifyDelay is how long the "VPN dropped" notification waits for the
// primary status emission to settle.
var notifyDelay = 200 * time.Millisecond

// NetMon continuously determines whether the host's traffic is flowing
// through a VPN tunnel or leaking unprotected.
type NetMon struct {
	m        *mgr.Manager
	instance instance

	// Session state. lastStatus is guarded by stateLock, the flags are
	// atomic. All fields are mutated inside the resolver's critical
	// section, except enabled, which is toggled externally, and the
	// resolving flag plus lastStatus, which the listener touches when it
	// detects a qualifying change notification.
	enabled    *abool.AtomicBool
	resolving  *abool.AtomicBool
	stateLock  sync.Mutex
	lastStatus Status
	probeTotal atomic.Uint64

	// resolveLock serializes resolution passes.
	resolveLock sync.Mutex

	debounce     *mgr.WorkerMgr
	source       LineSource
	httpClient   *http.Client
	probeCounter *metrics.Counter

	// Probe and timing configuration, copied from the package defaults
	// at creation time.
	interfacesDir         string
	connectivityURL       string
	ipEchoURL             string
	connectivityAttempts  int
	connectivityTimeout   time.Duration
	connectivityRetryWait time.Duration
	ipEchoTimeout         time.Duration
	debounceDuration      time.Duration
	notifyDelay           time.Duration

	// EventStatusChange is submitted for every externally significant
	// status update, including the transient resolving marker.
	EventStatusChange *mgr.EventMgr[Status]
	// EventLogLine is the human-readable activity feed.
	EventLogLine *mgr.EventMgr[string]
	// EventProbeCount is submitted with the running total of probe events.
	EventProbeCount *mgr.EventMgr[uint64]
}

// Manager returns the module manager.
func (nm *NetMon) Manager() *mgr.Manager {
	return nm.m
}

// Start starts the module.
func (nm *NetMon) Start() error {
	nm.addLog("monitor initialized")

	nm.m.Go("network event listener", nm.listenForChanges)
	nm.m.Go("initial status check", func(w *mgr.WorkerCtx) error {
		nm.resolve(w, TriggerInit)
		return nil
	})

	return nil
}

// Stop stops the module.
func (nm *NetMon) Stop() error {
	nm.debounce.Stop()
	return nil
}

// CheckNow triggers a forced resolution pass.
func (nm *NetMon) CheckNow() {
	nm.m.Go("manual status check", func(w *mgr.WorkerCtx) error {
		nm.resolve(w, TriggerManual)
		return nil
	})
}

// SetEnabled enables or disables monitoring. Disabling does not stop the
// event listener, it only makes it ignore change notifications.
// Re-enabling immediately triggers a forced resolution pass.
func (nm *NetMon) SetEnabled(enable bool) {
	switch {
	case enable && nm.enabled.SetToIf(false, true):
		nm.addLog("monitoring re-enabled")
		nm.m.Go("toggle status check", func(w *mgr.WorkerCtx) error {
			nm.resolve(w, TriggerToggle)
			return nil
		})

	case !enable && nm.enabled.SetToIf(true, false):
		nm.addLog("monitoring disabled")
		nm.EventStatusChange.Submit(StatusDisabled)
	}
}

// Enabled returns whether monitoring is enabled.
func (nm *NetMon) Enabled() bool {
	return nm.enabled.IsSet()
}

// StateSnapshot is a read-only view of the session state.
type StateSnapshot struct {
	Enabled    bool
	Status     Status
	Resolving  bool
	ProbeCount uint64
}

// State returns a snapshot of the current session state.
func (nm *NetMon) State() StateSnapshot {
	return StateSnapshot{
		Enabled:    nm.enabled.IsSet(),
		Status:     nm.getLastStatus(),
		Resolving:  nm.resolving.IsSet(),
		ProbeCount: nm.probeTotal.Load(),
	}
}

func (nm *NetMon) getLastStatus() Status {
	nm.stateLock.Lock()
	defer nm.stateLock.Unlock()

	return nm.lastStatus
}

func (nm *NetMon) setLastStatus(status Status) {
	nm.stateLock.Lock()
	defer nm.stateLock.Unlock()

	nm.lastStatus = status
}

// addLog submits a timestamped line to the activity feed.
func (nm *NetMon) addLog(msg string) {
	nm.EventLogLine.Submit(time.Now().Format("15:04:05") + " " + msg)
}

var (
	module     *NetMon
	shimLoaded atomic.Bool
)

// New returns a new NetMon module.
func New(instance instance) (*NetMon, error) {
	if !shimLoaded.CompareAndSwap(false, true) {
		return nil, errors.New("only one instance allowed")
	}

	nm, err := newNetMon(instance)
	if err != nil {
		return nil, err
	}
	module = nm
	return module, nil
}

func newNetMon(instance instance) (*NetMon, error) {
	m := mgr.New("NetMon")
	nm := &NetMon{
		m:        m,
		instance: instance,

		enabled:   abool.NewBool(true),
		resolving: abool.New(),

		source:     commandLineSource,
		httpClient: newProbeClient(),

		interfacesDir:         DefaultInterfacesDir,
		connectivityURL:       ConnectivityCheckURL,
		ipEchoURL:             IPEchoURL,
		connectivityAttempts:  connectivityAttempts,
		connectivityTimeout:   connectivityTimeout,
		connectivityRetryWait: connectivityRetryWait,
		ipEchoTimeout:         ipEchoTimeout,
		debounceDuration:      debounceDuration,
		notifyDelay:           notifyDelay,

		EventStatusChange: mgr.NewEventMgr[Status]("status change", m),
		EventLogLine:      mgr.NewEventMgr[string]("log line", m),
		EventProbeCount:   mgr.NewEventMgr[uint64]("probe count", m),
	}

	nm.debounce = m.NewWorkerMgr("debounced status check", func(w *mgr.WorkerCtx) error {
		nm.resolve(w, TriggerAuto)
		return nil
	})

	probeCounter, err := metrics.NewCounter("netmon/probes/total")
	if err != nil {
		return nil, err
	}
	nm.probeCounter = probeCounter

	return nm, nil
}

type instance interface {
	Notifications() *notifications.Notifications
}
