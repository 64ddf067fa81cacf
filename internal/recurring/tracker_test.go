package recurring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOccurrence_FirstOnlyIsDetailed(t *testing.T) {
	r := NewRegistry(DefaultSummaryEvery)

	assert.True(t, r.Record("STEAM", "temperature out of range"))
	for i := 0; i < 250; i++ {
		assert.False(t, r.Record("STEAM", "temperature out of range"))
	}
	assert.Equal(t, int64(251), r.Count("STEAM", "temperature out of range"))
}

func TestRecordOccurrence_KeysAreIndependent(t *testing.T) {
	r := NewRegistry(10)

	assert.True(t, r.Record("STEAM", "low"))
	assert.True(t, r.Record("STEAM", "high"))
	assert.True(t, r.Record("WATER", "low"))
	assert.False(t, r.Record("STEAM", "low"))

	assert.Equal(t, int64(2), r.Count("STEAM", "low"))
	assert.Equal(t, int64(1), r.Count("STEAM", "high"))
	assert.Equal(t, int64(0), r.Count("R22", "low"))
}

func TestSummary_OrderedByFirstOccurrence(t *testing.T) {
	r := NewRegistry(10)
	r.Record("B", "x")
	r.Record("A", "y")
	r.Record("B", "x")
	r.Tracker("C", "never") // registered but not recorded

	s := r.Summary()
	require.Len(t, s, 2)
	assert.Equal(t, Entry{Substance: "B", Kind: "x", MessageIndex: 1, Count: 2}, s[0])
	assert.Equal(t, Entry{Substance: "A", Kind: "y", MessageIndex: 2, Count: 1}, s[1])
}

func TestReset(t *testing.T) {
	r := NewRegistry(10)
	r.Record("A", "x")
	r.Reset()

	assert.Empty(t, r.Summary())
	assert.True(t, r.Record("A", "x"))
}

func TestRecordOccurrence_Concurrent(t *testing.T) {
	r := NewRegistry(DefaultSummaryEvery)
	tr := r.Tracker("GLYCOL", "cp")

	var wg sync.WaitGroup
	var mu sync.Mutex
	detailed := 0
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if tr.RecordOccurrence() {
					mu.Lock()
					detailed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8000), tr.Count())
	assert.Equal(t, 1, detailed)
}
