package core_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"commerce-backoffice/internal/core"
)

func TestSubmissionGuard_SecondAcquireFails(t *testing.T) {
	g := core.NewSubmissionGuard()

	assert.True(t, g.TryAcquire("cust-1:pos"))
	assert.False(t, g.TryAcquire("cust-1:pos"), "same key must be rejected while held")
	assert.True(t, g.TryAcquire("cust-1:online"), "a different channel is a different key")

	g.Release("cust-1:pos")
	assert.True(t, g.TryAcquire("cust-1:pos"), "released key must be reusable")
}

func TestSubmissionGuard_OnlyOneWinnerUnderContention(t *testing.T) {
	g := core.NewSubmissionGuard()

	const goroutines = 50
	var wins int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if g.TryAcquire("cust-9:pos") {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), wins, "exactly one goroutine may hold the key")
}
