package sse

import (
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySaveAndGet(t *testing.T) {
	r := NewRegistry()
	e := NewEmitter("user_1", httptest.NewRecorder())

	r.Save("user_1", e)

	got, ok := r.Get("user_1")
	require.True(t, ok)
	assert.Same(t, e, got)

	_, ok = r.Get("user_2")
	assert.False(t, ok)
}

func TestRegistrySecondSaveReplaces(t *testing.T) {
	r := NewRegistry()
	first := NewEmitter("user_1", httptest.NewRecorder())
	second := NewEmitter("user_1", httptest.NewRecorder())

	r.Save("user_1", first)
	r.Save("user_1", second)

	got, ok := r.Get("user_1")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistryDeleteRemovesWhoeverIsThere(t *testing.T) {
	r := NewRegistry()
	r.Save("user_1", NewEmitter("user_1", httptest.NewRecorder()))

	r.Delete("user_1")
	_, ok := r.Get("user_1")
	assert.False(t, ok)

	// Deleting an absent id is a no-op, not an error.
	r.Delete("user_1")
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Save("user_1", NewEmitter("user_1", httptest.NewRecorder()))
			r.Get("user_1")
			r.Delete("user_1")
		}()
	}
	wg.Wait()

	r.Delete("user_1")
	_, ok := r.Get("user_1")
	assert.False(t, ok)
}
