package configuration

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDLocks_SerialisesSameID(t *testing.T) {
	var l idLocks
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock("a")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
	assert.Zero(t, l.size())
}

func TestIDLocks_IndependentIDs(t *testing.T) {
	var l idLocks

	unlockA := l.lock("a")
	done := make(chan struct{})
	go func() {
		unlock := l.lock("b")
		unlock()
		close(done)
	}()
	<-done

	assert.Equal(t, 1, l.size())
	unlockA()
	assert.Zero(t, l.size())
}
