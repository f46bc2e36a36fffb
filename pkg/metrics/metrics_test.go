package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scrayosnet/passage/pkg/metrics"
)

func TestLinearBuckets(t *testing.T) {
	got := metrics.LinearBuckets(0, 512, 10)
	assert.Equal(t, []float64{0, 512, 1024, 1536, 2048, 2560, 3072, 3584, 4096, 4608}, got)
}

func TestExponentialBuckets(t *testing.T) {
	got := metrics.ExponentialBuckets(0.1, 2.0, 5)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.4, 0.8, 1.6}, got, 1e-9)
}

func TestInMemoryOpenConnectionsGauge(t *testing.T) {
	m := metrics.NewInMemory()
	m.IncOpenConnections()
	m.IncOpenConnections()
	m.DecOpenConnections()
	assert.EqualValues(t, 1, m.OpenConnections())
}

func TestInMemoryRequestDurationHistogram(t *testing.T) {
	m := metrics.NewInMemory()
	m.ObserveRequestDuration("success", 50*time.Millisecond)
	m.ObserveRequestDuration("success", 3*time.Second)
	m.ObserveRequestDuration("timeout", 120*time.Second)

	snap := m.RequestDurationSnapshot()
	assert.Contains(t, snap.Counts, "success")
	assert.Contains(t, snap.Counts, "timeout")
	var successTotal uint64
	for _, c := range snap.Counts["success"] {
		successTotal += c
	}
	assert.EqualValues(t, 2, successTotal)
}

func TestInMemoryClientLocale(t *testing.T) {
	m := metrics.NewInMemory()
	m.ObserveClientLocale("de_DE")
	m.ObserveClientLocale("de_DE")
	m.ObserveClientLocale("en_US")

	locales := m.ClientLocales()
	assert.EqualValues(t, 2, locales["de_DE"])
	assert.EqualValues(t, 1, locales["en_US"])
}

func TestInMemoryRateLimiterSize(t *testing.T) {
	m := metrics.NewInMemory()
	m.SetRateLimiterSize(7)
	assert.EqualValues(t, 7, m.RateLimiterSize())
}
