// Package metrics defines the narrow recording surface the listener and
// connection state machine call into, and a lightweight in-process
// Recorder implementation. A concrete metrics registry (e.g. a Prometheus
// exporter) lives outside this repository; this package only gives it
// somewhere to attach.
package metrics

import (
	"sync"
	"time"
)

// Recorder is the capability interface the connection state machine and
// listener call into. Implementations decide how (or whether) to export
// these observations.
type Recorder interface {
	// ObserveRequestDuration records one connection's outcome and total
	// duration, labelled by its short result: success,
	// connection-closed, timeout, no-target-found, missed-keep-alive,
	// protocol-error, internal-error, or rejected (refused by the
	// listener before a connection task starts).
	ObserveRequestDuration(result string, d time.Duration)
	// IncOpenConnections and DecOpenConnections track the open_connections
	// gauge around a connection task's lifetime.
	IncOpenConnections()
	DecOpenConnections()
	// SetRateLimiterSize reports the rate limiter's current key count.
	SetRateLimiterSize(n int)
	// ObservePacketSize records a packet's encoded size, labelled
	// "read" or "write".
	ObservePacketSize(bound string, size int)
	// ObserveClientLocale increments a per-locale counter on first
	// ClientInformation.
	ObserveClientLocale(locale string)
	// ObserveClientViewDistance records a client's announced view distance.
	ObserveClientViewDistance(distance int)
	// ObserveAuthenticationRequestDuration records one authentication
	// adapter call, labelled "success" or "failed".
	ObserveAuthenticationRequestDuration(result string, d time.Duration)
}

// LinearBuckets returns count bucket upper bounds starting at start and
// advancing by width, e.g. LinearBuckets(0, 512, 10) for packet_size and
// client_view_distance.
func LinearBuckets(start, width float64, count int) []float64 {
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start + float64(i)*width
	}
	return buckets
}

// ExponentialBuckets returns count bucket upper bounds starting at start
// and multiplying by factor each step, e.g. ExponentialBuckets(0.1, 2.0, 10)
// for the duration histograms.
func ExponentialBuckets(start, factor float64, count int) []float64 {
	buckets := make([]float64, count)
	v := start
	for i := range buckets {
		buckets[i] = v
		v *= factor
	}
	return buckets
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  map[string][]uint64
	sums    map[string]float64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make(map[string][]uint64),
		sums:    make(map[string]float64),
	}
}

func (h *histogram) observe(label string, v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts, ok := h.counts[label]
	if !ok {
		counts = make([]uint64, len(h.buckets)+1)
		h.counts[label] = counts
	}
	idx := len(h.buckets)
	for i, bound := range h.buckets {
		if v <= bound {
			idx = i
			break
		}
	}
	counts[idx]++
	h.sums[label] += v
}

// Snapshot is a point-in-time copy of a histogram's per-label bucket counts
// and sums, for tests and for an external exporter to translate into its
// own wire format.
type Snapshot struct {
	Buckets []float64
	Counts  map[string][]uint64
	Sum     map[string]float64
}

func (h *histogram) snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts := make(map[string][]uint64, len(h.counts))
	for k, v := range h.counts {
		cp := make([]uint64, len(v))
		copy(cp, v)
		counts[k] = cp
	}
	sum := make(map[string]float64, len(h.sums))
	for k, v := range h.sums {
		sum[k] = v
	}
	return Snapshot{Buckets: h.buckets, Counts: counts, Sum: sum}
}
