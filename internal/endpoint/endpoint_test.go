package endpoint

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nash0810/multiminio/internal/storage"
	"github.com/Nash0810/multiminio/internal/storage/storagetest"
)

// TestEndpointInitialState tests a fresh endpoint is unprobed
func TestEndpointInitialState(t *testing.T) {
	e := New(0, storagetest.New("http://minio1.com:9000"))

	assert.Equal(t, Unknown, e.GetState())
	assert.Equal(t, "http://minio1.com:9000", e.URL)
	assert.Zero(t, e.GetProbeMetrics())
}

// TestEndpointProbeMetrics tests success/failure bookkeeping
func TestEndpointProbeMetrics(t *testing.T) {
	e := New(1, storagetest.New("http://minio2.com"))
	at := time.Unix(100, 0)

	for i := 1; i <= 3; i++ {
		e.RecordProbeSuccess(at, 10*time.Millisecond)
		m := e.GetProbeMetrics()
		assert.Equal(t, i, m.ConsecutiveSuccesses)
		assert.Zero(t, m.ConsecutiveFailures, "failures should reset on success")
	}
	assert.Equal(t, Up, e.GetState())

	for i := 1; i <= 2; i++ {
		e.RecordProbeFailure(at.Add(time.Second), time.Second)
		m := e.GetProbeMetrics()
		assert.Equal(t, i, m.ConsecutiveFailures)
		assert.Zero(t, m.ConsecutiveSuccesses, "successes should reset on failure")
	}
	assert.Equal(t, Down, e.GetState())

	m := e.GetProbeMetrics()
	assert.Equal(t, at, m.LastSuccess)
	assert.Equal(t, at.Add(time.Second), m.LastFailure)
	assert.Equal(t, time.Second, m.LastLatency)
}

// TestEndpointConcurrentProbes tests thread-safe recording
func TestEndpointConcurrentProbes(t *testing.T) {
	e := New(0, storagetest.New("http://minio1.com"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e.RecordProbeSuccess(time.Now(), time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5000, e.GetProbeMetrics().ConsecutiveSuccesses)
}

// TestHealthStateString tests state names
func TestHealthStateString(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Unknown.String())
	assert.Equal(t, "UP", Up.String())
	assert.Equal(t, "DOWN", Down.String())
	assert.Equal(t, "INVALID", HealthState(42).String())
}

// TestNewSetEmpty tests that an empty set is rejected
func TestNewSetEmpty(t *testing.T) {
	_, err := NewSet(nil)
	assert.ErrorIs(t, err, ErrEmptySet)

	_, err = NewSet([]storage.Client{nil})
	assert.Error(t, err)
}

// TestSetOrder tests priority order and copy semantics
func TestSetOrder(t *testing.T) {
	s, err := NewSet([]storage.Client{
		storagetest.New("http://a:9000"),
		storagetest.New("http://b:9000"),
		storagetest.New("http://c:9000"),
	})
	require.NoError(t, err)

	require.Equal(t, 3, s.Len())
	for i, e := range s.All() {
		assert.Equal(t, i, e.Index)
		assert.Same(t, e, s.Get(i))
	}
	assert.Equal(t, "http://b:9000", s.Get(1).URL)

	all := s.All()
	all[0] = nil
	assert.NotNil(t, s.Get(0), "All must return a copy")
}
