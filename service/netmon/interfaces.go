package netmon

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tunwatch/tunwatch/service/mgr"
)

// DefaultInterfacesDir is where the operating system exposes the list of
// network interfaces.
const DefaultInterfacesDir = "/sys/class/net"

// vpnInterfacePrefixes holds the name prefixes of interfaces that are
// presumed to be tunnel devices.
var vpnInterfacePrefixes = []string{"tun", "wg", "ppp"}

// scanInterfaces reports whether at least one VPN-candidate interface is
// currently up. This is a point-in-time check without retries or caching.
// Any failure degrades to "no active VPN interface" and never fails the
// caller.
func (nm *NetMon) scanInterfaces(wc *mgr.WorkerCtx) bool {
	entries, err := os.ReadDir(nm.interfacesDir)
	if err != nil {
		wc.Warn("failed to enumerate network interfaces", "err", err)
		return false
	}

	for _, entry := range entries {
		if !isVPNCandidate(entry.Name()) {
			continue
		}
		if nm.interfaceIsUp(entry.Name()) {
			return true
		}
	}
	return false
}

func isVPNCandidate(name string) bool {
	for _, prefix := range vpnInterfacePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// interfaceIsUp reads the operational state of the given interface.
// An unreadable or missing state is treated as not up.
func (nm *NetMon) interfaceIsUp(name string) bool {
	data, err := os.ReadFile(filepath.Join(nm.interfacesDir, name, "operstate"))
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(string(data))) != "down"
}
