package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("response")

	assert.Equal(t, "response-0001", ids.Next())
	assert.Equal(t, "response-0002", ids.Next())

	other := NewSequentialIDs("conn")
	assert.Equal(t, "conn-0001", other.Next(), "generators are independent")
}

func TestSequentialIDs_ConcurrentCallsStayUnique(t *testing.T) {
	ids := NewSequentialIDs("id")

	const callers = 8
	const perCaller = 50
	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perCaller; j++ {
				id := ids.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, callers*perCaller)
}
