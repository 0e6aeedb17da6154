package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCache_PutReturnsReport(t *testing.T) {
	c := NewReportCache(DefaultSize)

	got := c.Put("fusion", "## report")

	assert.Equal(t, "## report", got)
	assert.True(t, c.Has("fusion", "## report"))
	assert.False(t, c.Has("fusion", "## other"))
	assert.Equal(t, 1, c.Len())
}

func TestReportCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewReportCache(100)

	for i := 0; i < 101; i++ {
		c.Put(fmt.Sprintf("q%d", i), fmt.Sprintf("r%d", i))
	}

	require.Equal(t, 100, c.Len())
	assert.False(t, c.Has("q0", "r0"))
	for i := 1; i < 101; i++ {
		assert.True(t, c.Has(fmt.Sprintf("q%d", i), fmt.Sprintf("r%d", i)), "q%d", i)
	}
}

func TestReportCache_DuplicatePairStoredOnce(t *testing.T) {
	c := NewReportCache(10)

	c.Put("q", "r")
	c.Put("q", "r")
	c.Put("q", "r2")

	assert.Equal(t, 2, c.Len())
}

func TestReportCache_ConcurrentPut(t *testing.T) {
	c := NewReportCache(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put(fmt.Sprintf("q%d", i), "r")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
}

func TestReportCache_ConcurrentPutEvicts(t *testing.T) {
	c := NewReportCache(DefaultSize)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				c.Put(fmt.Sprintf("q%d-%d", g, i), "r")
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, DefaultSize, c.Len())
}

func TestReportCache_PutRefreshesRecency(t *testing.T) {
	c := NewReportCache(3)

	c.Put("a", "ra")
	c.Put("b", "rb")
	c.Put("c", "rc")
	c.Put("a", "ra")
	c.Put("d", "rd")

	assert.Equal(t, 3, c.Len())
	assert.True(t, c.Has("a", "ra"))
	assert.False(t, c.Has("b", "rb"))
	assert.True(t, c.Has("c", "rc"))
	assert.True(t, c.Has("d", "rd"))
}

func TestNewReportCache_DefaultSize(t *testing.T) {
	c := NewReportCache(0)

	for i := 0; i < DefaultSize+5; i++ {
		c.Put(fmt.Sprintf("q%d", i), "r")
	}
	assert.Equal(t, DefaultSize, c.Len())
}
