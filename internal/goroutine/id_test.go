package goroutine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDIsStableWithinGoroutine(t *testing.T) {
	first := ID()
	second := ID()
	require.Equal(t, first, second)
}

func TestIDDiffersAcrossGoroutines(t *testing.T) {
	var wg sync.WaitGroup
	ids := make(chan uint64, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		seen[id] = true
	}
	require.Len(t, seen, 2)
}
