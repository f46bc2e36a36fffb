package metrics

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// InMemory is a lightweight Recorder that keeps every observation in
// process memory, suitable for tests and for standalone deployments that
// don't wire an external metrics registry.
type InMemory struct {
	requestDuration     *histogram
	authRequestDuration *histogram
	packetSize          *histogram
	viewDistance        *histogram

	openConnections atomic.Int64
	rateLimiterSize atomic.Int64

	localeMu sync.Mutex
	locale   map[string]uint64
}

// NewInMemory returns a Recorder with linear(0, 512, 10) boundaries for
// packet size and view distance and exponential(0.1, 2.0, 10) boundaries
// for durations.
func NewInMemory() *InMemory {
	return &InMemory{
		requestDuration:     newHistogram(ExponentialBuckets(0.1, 2.0, 10)),
		authRequestDuration: newHistogram(ExponentialBuckets(0.1, 2.0, 10)),
		packetSize:          newHistogram(LinearBuckets(0, 512, 10)),
		viewDistance:        newHistogram(LinearBuckets(0, 512, 10)),
		locale:              make(map[string]uint64),
	}
}

func (m *InMemory) ObserveRequestDuration(result string, d time.Duration) {
	m.requestDuration.observe(result, d.Seconds())
}

func (m *InMemory) IncOpenConnections() { m.openConnections.Inc() }
func (m *InMemory) DecOpenConnections() { m.openConnections.Dec() }

func (m *InMemory) OpenConnections() int64 { return m.openConnections.Load() }

func (m *InMemory) SetRateLimiterSize(n int) { m.rateLimiterSize.Store(int64(n)) }

func (m *InMemory) RateLimiterSize() int64 { return m.rateLimiterSize.Load() }

func (m *InMemory) ObservePacketSize(bound string, size int) {
	m.packetSize.observe(bound, float64(size))
}

func (m *InMemory) ObserveClientLocale(locale string) {
	m.localeMu.Lock()
	defer m.localeMu.Unlock()
	m.locale[locale]++
}

func (m *InMemory) ClientLocales() map[string]uint64 {
	m.localeMu.Lock()
	defer m.localeMu.Unlock()
	out := make(map[string]uint64, len(m.locale))
	for k, v := range m.locale {
		out[k] = v
	}
	return out
}

func (m *InMemory) ObserveClientViewDistance(distance int) {
	m.viewDistance.observe("", float64(distance))
}

func (m *InMemory) ObserveAuthenticationRequestDuration(result string, d time.Duration) {
	m.authRequestDuration.observe(result, d.Seconds())
}

// RequestDurationSnapshot exposes the request_duration histogram for tests
// and external exporters.
func (m *InMemory) RequestDurationSnapshot() Snapshot { return m.requestDuration.snapshot() }

// AuthenticationRequestDurationSnapshot exposes the
// authentication_request_duration histogram.
func (m *InMemory) AuthenticationRequestDurationSnapshot() Snapshot {
	return m.authRequestDuration.snapshot()
}

// PacketSizeSnapshot exposes the packet_size histogram.
func (m *InMemory) PacketSizeSnapshot() Snapshot { return m.packetSize.snapshot() }

var _ Recorder = (*InMemory)(nil)
