package netmon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/tunwatch/tunwatch/service/mgr"
)

// Network change notification stream.
var (
	// MonitorCommand is the external facility that emits a line of text
	// for every network state change.
	MonitorCommand = []string{"nmcli", "monitor"}

	debounceDuration = 2500 * time.Millisecond
)

// eventKeywords mark monitor lines that hint at a network state change.
// Matching is case-insensitive substring matching.
var eventKeywords = []string{
	"connected",
	"vpn",
	"connectivity",
	"disconnected",
	"removed",
	"unavailable",
}

// LineSource opens a line-oriented stream of network change notifications.
type LineSource func(ctx context.Context) (io.ReadCloser, error)

// commandLineSource starts the monitor subprocess and returns its output
// stream. The subprocess is killed when the given context is canceled.
func commandLineSource(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, MonitorCommand[0], MonitorCommand[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("get stdout of %s: %w", MonitorCommand[0], err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", MonitorCommand[0], err)
	}

	return &monitorStream{
		ReadCloser: stdout,
		cmd:        cmd,
	}, nil
}

type monitorStream struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (ms *monitorStream) Close() error {
	err := ms.ReadCloser.Close()
	// Reap the subprocess. The context attached to the command guarantees
	// that it is killed and Wait returns.
	_ = ms.cmd.Wait()
	return err
}

func matchesEventKeywords(line string) bool {
	for _, keyword := range eventKeywords {
		if strings.Contains(line, keyword) {
			return true
		}
	}
	return false
}

// listenForChanges consumes the network change notification stream and
// collapses bursts of qualifying lines into a single debounced resolution
// pass. The worker terminates when the stream ends and is not restarted.
func (nm *NetMon) listenForChanges(wc *mgr.WorkerCtx) error {
	stream, err := nm.source(wc.Ctx())
	if err != nil {
		nm.addLog("network monitor unavailable: " + err.Error())
		return fmt.Errorf("open network monitor stream: %w", err)
	}
	defer func() {
		_ = stream.Close()
	}()

	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		if !nm.enabled.IsSet() {
			continue
		}

		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if !matchesEventKeywords(line) {
			continue
		}

		// The pass that eventually runs must be emitted even if the
		// classification ends up unchanged: mark the session as resolving
		// and drop the last classification right away.
		if nm.resolving.SetToIf(false, true) {
			nm.setLastStatus(StatusUnknown)
			nm.EventStatusChange.Submit(StatusResolving)
		}

		// Trailing-edge debounce: replace a pending check, so that only a
		// quiet period after the last qualifying line triggers a pass.
		nm.debounce.Delay(nm.debounceDuration)
	}

	if err := scanner.Err(); err != nil && !wc.IsDone() {
		nm.addLog("network monitor error: " + err.Error())
		return fmt.Errorf("read network monitor stream: %w", err)
	}

	wc.Debug("network monitor stream ended")
	return nil
}
