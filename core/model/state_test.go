package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())
	assert.Equal(t, 0, s.NFeatures())
	assert.Equal(t, 0, s.NSamples())

	s.SetDimensions(6, 40)
	s.SetFitted()
	assert.True(t, s.IsFitted())
	assert.Equal(t, 6, s.NFeatures())
	assert.Equal(t, 40, s.NSamples())

	s.Reset()
	assert.False(t, s.IsFitted())
	assert.Equal(t, 0, s.NFeatures())
	assert.Equal(t, 0, s.NSamples())
}

func TestStateManagerConcurrentReaders(t *testing.T) {
	s := NewStateManager()
	s.SetDimensions(3, 10)
	s.SetFitted()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.IsFitted()
			_ = s.NFeatures()
			_ = s.NSamples()
		}()
	}
	wg.Wait()
	assert.True(t, s.IsFitted())
}
