package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jun/gophbox/internal/registry"
)

type fakeFolders struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeFolders(keys ...string) *fakeFolders {
	f := &fakeFolders{keys: map[string]bool{"default": true}}
	for _, k := range keys {
		f.keys[k] = true
	}
	return f
}

func (f *fakeFolders) HasFolder(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key]
}

func (f *fakeFolders) remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
}

func TestActiveFolders_DefaultsToDefault(t *testing.T) {
	a := NewActiveFolders(newFakeFolders())
	assert.Equal(t, "default", a.GetActiveFolder("u1"))
}

func TestActiveFolders_SetAndGet(t *testing.T) {
	a := NewActiveFolders(newFakeFolders("work"))

	key, err := a.SetActiveFolder("u1", "  Work ")
	require.NoError(t, err)
	assert.Equal(t, "work", key)
	assert.Equal(t, "work", a.GetActiveFolder("u1"))
	assert.Equal(t, "default", a.GetActiveFolder("u2"), "other users are unaffected")
}

func TestActiveFolders_SetUnknownFolder(t *testing.T) {
	a := NewActiveFolders(newFakeFolders())

	_, err := a.SetActiveFolder("u1", "nowhere")
	require.ErrorIs(t, err, registry.ErrNotFound)
	assert.Equal(t, "default", a.GetActiveFolder("u1"))

	_, err = a.SetActiveFolder("u1", "   ")
	require.ErrorIs(t, err, registry.ErrInvalidInput)
}

func TestActiveFolders_StaleFolderFallsBack(t *testing.T) {
	folders := newFakeFolders("trip")
	a := NewActiveFolders(folders)

	_, err := a.SetActiveFolder("u1", "trip")
	require.NoError(t, err)

	folders.remove("trip")
	assert.Equal(t, "default", a.GetActiveFolder("u1"))
}

func TestActiveFolders_Reset(t *testing.T) {
	a := NewActiveFolders(newFakeFolders("work"))
	_, err := a.SetActiveFolder("u1", "work")
	require.NoError(t, err)

	a.Reset("u1")
	assert.Equal(t, "default", a.GetActiveFolder("u1"))
}

func TestActiveFolders_Concurrent(t *testing.T) {
	a := NewActiveFolders(newFakeFolders("a", "b"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := []string{"u1", "u2"}[i%2]
			_, _ = a.SetActiveFolder(user, []string{"a", "b"}[i%2])
			_ = a.GetActiveFolder(user)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, "a", a.GetActiveFolder("u1"))
	assert.Equal(t, "b", a.GetActiveFolder("u2"))
}
