package netmon

// Status represents the protection state of the host's traffic.
type Status uint8

// Status values.
const (
	StatusUnknown   Status = 0
	StatusResolving Status = 1 // a classification is in progress
	StatusProtected Status = 2 // online through an active VPN interface
	StatusInsecure  Status = 3 // online without an active VPN interface
	StatusOffline   Status = 4
	StatusDisabled  Status = 5 // monitoring is switched off
)

func (s Status) String() string {
	switch s {
	case StatusResolving:
		return "Resolving"
	case StatusProtected:
		return "Protected"
	case StatusInsecure:
		return "Insecure"
	case StatusOffline:
		return "Offline"
	case StatusDisabled:
		return "Disabled"
	case StatusUnknown:
		fallthrough
	default:
		return "Unknown"
	}
}

// Trigger identifies what caused a resolution pass.
type Trigger uint8

// Trigger values.
const (
	TriggerInit   Trigger = 0 // process start
	TriggerAuto   Trigger = 1 // debounced network change event
	TriggerManual Trigger = 2 // explicit "check now"
	TriggerToggle Trigger = 3 // monitoring re-enabled
)

func (t Trigger) String() string {
	switch t {
	case TriggerInit:
		return "init"
	case TriggerAuto:
		return "auto"
	case TriggerManual:
		return "manual"
	case TriggerToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Forced returns whether a pass with this trigger must always emit a
// status update, even if the classification did not change.
func (t Trigger) Forced() bool {
	return t != TriggerAuto
}

// classify combines the scanner and prober results into a protection state.
func classify(hasActiveVPN, online bool) Status {
	switch {
	case hasActiveVPN && online:
		return StatusProtected
	case online:
		return StatusInsecure
	default:
		return StatusOffline
	}
}
