package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpStoreSave, 10*time.Millisecond)
	c.RecordTiming(OpStoreSave, 30*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.StoreSave)
	assert.Equal(t, int64(2), snap.StoreSave.Count)
	assert.Equal(t, int64(40), snap.StoreSave.TotalTimeMs)
	assert.Equal(t, 20.0, snap.StoreSave.AvgTimeMs)
	assert.Equal(t, int64(10), snap.StoreSave.MinTimeMs)
	assert.Equal(t, int64(30), snap.StoreSave.MaxTimeMs)
	assert.Nil(t, snap.StoreSave.TotalInputTokens, "store ops carry no token stats")
	assert.Nil(t, snap.StoreLoad)
}

func TestRecordLLMUsage(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpRouteSearch, time.Second, 100, 900)
	c.RecordLLMUsage(OpRouteSearch, time.Second, 50, 300)

	snap := c.Snapshot()
	require.NotNil(t, snap.RouteSearch)
	require.NotNil(t, snap.RouteSearch.TotalInputTokens)
	assert.Equal(t, int64(150), *snap.RouteSearch.TotalInputTokens)
	assert.Equal(t, int64(1200), *snap.RouteSearch.TotalOutputTokens)
	assert.Equal(t, int64(50), *snap.RouteSearch.MinInputTokens)
	assert.Equal(t, int64(900), *snap.RouteSearch.MaxOutputTokens)
}

func TestLLMUsageWithoutTokens(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpChat, time.Second, 0, 0)

	snap := c.Snapshot()
	require.NotNil(t, snap.Chat)
	assert.Nil(t, snap.Chat.TotalInputTokens)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RecordTiming(OpStoreLoad, time.Millisecond)
	c.RecordLLMUsage(OpChat, time.Millisecond, 1, 1)
	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(OpStoreLoad, time.Millisecond)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.Snapshot().StoreLoad.Count)
}
