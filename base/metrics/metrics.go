package metrics

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	vm "github.com/VictoriaMetrics/metrics"
)

// PrometheusFormatRequirement is the format required by prometheus for
// metric and label names.
const PrometheusFormatRequirement = "^[a-zA-Z_][a-zA-Z0-9_]*$"

var prometheusFormat = regexp.MustCompile(PrometheusFormatRequirement)

var (
	registry     = vm.NewSet()
	registryLock sync.Mutex
	namespace    string
)

// SetNamespace sets the namespace prefix for all registered metrics.
// It must be set before any metric is created.
func SetNamespace(ns string) error {
	if !prometheusFormat.MatchString(ns) {
		return fmt.Errorf("metric namespace %q must match %s", ns, PrometheusFormatRequirement)
	}

	registryLock.Lock()
	defer registryLock.Unlock()

	namespace = ns
	return nil
}

// Counter is a counter metric.
type Counter struct {
	id string
	*vm.Counter
}

// NewCounter registers a new counter metric.
func NewCounter(id string) (*Counter, error) {
	cleanID := strings.ReplaceAll(id, "/", "_")
	if !prometheusFormat.MatchString(cleanID) {
		return nil, fmt.Errorf("metric name %q must match %s", id, PrometheusFormatRequirement)
	}

	registryLock.Lock()
	defer registryLock.Unlock()

	if namespace != "" {
		cleanID = namespace + "_" + cleanID
	}

	m := &Counter{
		id:      cleanID,
		Counter: registry.GetOrCreateCounter(cleanID),
	}
	return m, nil
}

// ID returns the full metric ID.
func (c *Counter) ID() string {
	return c.id
}

// CurrentValue returns the current counter value.
func (c *Counter) CurrentValue() uint64 {
	return c.Get()
}

// WritePrometheus writes all registered metrics to the given writer in
// prometheus exposition format.
func WritePrometheus(w io.Writer) {
	registryLock.Lock()
	defer registryLock.Unlock()

	registry.WritePrometheus(w)
}
