package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the HTTP surface and the
// outbound collaborators.
type Metrics struct {
	mu                sync.Mutex
	requestCount      map[string]int64
	errorCount        map[string]int64
	gatewayCallCount  map[string]int64
	notificationCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:      make(map[string]int64),
		errorCount:        make(map[string]int64),
		gatewayCallCount:  make(map[string]int64),
		notificationCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordGatewayCall counts scoring gateway calls by operation and outcome.
func (m *Metrics) RecordGatewayCall(operation string, success bool) {
	if m == nil {
		return
	}
	key := operation + "|" + strconv.FormatBool(success)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gatewayCallCount[key]++
}

// RecordNotification counts notification attempts by outcome.
func (m *Metrics) RecordNotification(success bool) {
	if m == nil {
		return
	}
	key := strconv.FormatBool(success)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationCount[key]++
}

// Requests returns the recorded count for a path/method/status triple.
func (m *Metrics) Requests(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount[pathKey(path, method, status)]
}

// GatewayCalls returns the recorded count for an operation/outcome pair.
func (m *Metrics) GatewayCalls(operation string, success bool) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gatewayCallCount[operation+"|"+strconv.FormatBool(success)]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
