package netmon

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tunwatch/tunwatch/service/mgr"
)

// Probe endpoints and timing.
var (
	// ConnectivityCheckURL is probed to determine general internet
	// reachability.
	ConnectivityCheckURL = "http://www.google.com"

	// IPEchoURL returns the public IP address of the caller as plain text.
	IPEchoURL = "https://icanhazip.com"

	connectivityAttempts  = 3
	connectivityTimeout   = 3 * time.Second
	connectivityRetryWait = 1200 * time.Millisecond
	ipEchoTimeout         = 5 * time.Second
)

// Some probe targets filter requests without a browser user agent.
const userAgent = "Mozilla/5.0"

func newProbeClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DisableKeepAlives:  true,
			DisableCompression: true,
			WriteBufferSize:    1024,
			ReadBufferSize:     1024,
		},
	}
}

// countProbe records one logical probe event. A probe event covers one
// reachability check or one IP fetch, irrespective of internal retries.
func (nm *NetMon) countProbe() {
	total := nm.probeTotal.Add(1)
	nm.probeCounter.Inc()
	nm.EventProbeCount.Submit(total)
}

// checkReachable reports whether the internet is generally reachable.
// It attempts the connectivity endpoint up to three times and counts as a
// single probe event regardless of how many attempts were needed.
func (nm *NetMon) checkReachable(wc *mgr.WorkerCtx) bool {
	nm.addLog("checking connectivity (" + nm.connectivityURL + ")")
	nm.countProbe()

	for attempt := 1; attempt <= nm.connectivityAttempts; attempt++ {
		if nm.tryReach(wc) {
			return true
		}
		if attempt < nm.connectivityAttempts {
			select {
			case <-time.After(nm.connectivityRetryWait):
			case <-wc.Done():
				return false
			}
		}
	}
	return false
}

func (nm *NetMon) tryReach(wc *mgr.WorkerCtx) bool {
	ctx, cancel := context.WithTimeout(wc.Ctx(), nm.connectivityTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, nm.connectivityURL, nil)
	if err != nil {
		wc.Warn("failed to build connectivity request", "err", err)
		return false
	}
	request.Header.Set("User-Agent", userAgent)

	response, err := nm.httpClient.Do(request)
	if err != nil {
		wc.Debug("connectivity attempt failed", "err", err)
		return false
	}
	defer func() {
		_ = response.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, response.Body)

	// An intercepting proxy on a broken network still completes the
	// request, only the status gives it away.
	if response.StatusCode != http.StatusOK {
		wc.Debug("connectivity attempt failed", "status", response.Status)
		return false
	}
	return true
}

// fetchPublicIP queries the IP echo endpoint once.
// Any failure is logged and reported as not ok, it is never fatal.
// Counts as one probe event.
func (nm *NetMon) fetchPublicIP(wc *mgr.WorkerCtx) (ip string, ok bool) {
	nm.addLog("fetching public ip (" + nm.ipEchoURL + ")")
	nm.countProbe()

	ctx, cancel := context.WithTimeout(wc.Ctx(), nm.ipEchoTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, nm.ipEchoURL, nil)
	if err != nil {
		wc.Warn("failed to build ip echo request", "err", err)
		return "", false
	}
	request.Header.Set("User-Agent", userAgent)

	response, err := nm.httpClient.Do(request)
	if err != nil {
		nm.addLog("public ip fetch failed: " + err.Error())
		wc.Warn("public ip fetch failed", "err", err)
		return "", false
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		nm.addLog("public ip fetch failed: unexpected status " + response.Status)
		wc.Warn("public ip fetch failed", "status", response.Status)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, 256))
	if err != nil {
		nm.addLog("public ip fetch failed: " + err.Error())
		wc.Warn("public ip fetch failed", "err", err)
		return "", false
	}

	ip = strings.TrimSpace(string(body))
	if ip == "" {
		return "", false
	}
	return ip, true
}
