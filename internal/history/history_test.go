package history

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("unavailable") }
func (failingStore) Set(string, string) error         { return errors.New("unavailable") }
func (failingStore) Delete(string) error              { return errors.New("unavailable") }
func (failingStore) Update(string, func(string, bool) (string, error)) error {
	return errors.New("unavailable")
}

// slowStore delays every update, as a disk-backed store would.
type slowStore struct {
	*MemoryStore
}

func (s slowStore) Update(key string, fn func(string, bool) (string, error)) error {
	return s.MemoryStore.Update(key, func(old string, ok bool) (string, error) {
		time.Sleep(time.Millisecond)
		return fn(old, ok)
	})
}

func saveConcurrently(store KeyValueStore, n int) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			New(store).Save(fmt.Sprintf("q%d", i))
		}(i)
	}
	wg.Wait()
}

func TestHistory_SaveAndGet(t *testing.T) {
	h := New(NewMemoryStore())
	assert.Equal(t, []string{}, h.Get())

	h.Save("gemini")
	h.Save("  mcp  ")
	h.Save("gemini")
	assert.Equal(t, []string{"gemini", "mcp"}, h.Get())
}

func TestHistory_IgnoresBlank(t *testing.T) {
	store := NewMemoryStore()
	h := New(store)
	h.Save("   ")
	_, ok, _ := store.Get(StorageKey)
	assert.False(t, ok, "blank query must not write")
}

func TestHistory_KeepsTenMostRecent(t *testing.T) {
	h := New(NewMemoryStore())
	for i := 0; i < 12; i++ {
		h.Save(fmt.Sprintf("q%d", i))
	}
	got := h.Get()
	require.Len(t, got, MaxEntries)
	assert.Equal(t, "q11", got[0])
	assert.Equal(t, "q2", got[MaxEntries-1])
}

func TestHistory_ConcurrentSavesAllKept(t *testing.T) {
	store := slowStore{NewMemoryStore()}
	saveConcurrently(store, 8)

	got := New(store).Get()
	sort.Strings(got)
	assert.Equal(t, []string{"q0", "q1", "q2", "q3", "q4", "q5", "q6", "q7"}, got)
}

func TestHistory_ConcurrentSavesKeepLimit(t *testing.T) {
	store := NewMemoryStore()
	saveConcurrently(store, 3*MaxEntries)
	assert.Len(t, New(store).Get(), MaxEntries)
}

func TestHistory_Clear(t *testing.T) {
	h := New(NewMemoryStore())
	h.Save("gemini")
	h.Clear()
	assert.Equal(t, []string{}, h.Get())
}

func TestHistory_CorruptValue(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(StorageKey, "{not json"))
	h := New(store)
	assert.Equal(t, []string{}, h.Get())

	h.Save("recover")
	assert.Equal(t, []string{"recover"}, h.Get())
}

func TestHistory_NilAndFailingStore(t *testing.T) {
	for name, h := range map[string]*History{
		"nil store":     New(nil),
		"failing store": New(failingStore{}),
		"nil history":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				h.Save("gemini")
				h.Clear()
			})
			assert.Equal(t, []string{}, h.Get())
		})
	}
}

func TestHistory_Namespaces(t *testing.T) {
	store := NewMemoryStore()
	a := New(store, WithNamespace("alice"))
	b := New(store, WithNamespace("bob"))
	shared := New(store, WithNamespace(""))

	a.Save("alpha")
	b.Save("beta")
	assert.Equal(t, []string{"alpha"}, a.Get())
	assert.Equal(t, []string{"beta"}, b.Get())
	assert.Equal(t, []string{}, shared.Get())
}

func TestBadgerStore(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenBadgerStore(dir, nil)
	require.NoError(t, err)

	h := New(store)
	h.Save("gemini cli")
	h.Save("extensions")
	require.NoError(t, store.Close())

	reopened, err := OpenBadgerStore(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []string{"extensions", "gemini cli"}, New(reopened).Get())

	_, ok, err := reopened.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reopened.Delete(StorageKey))
	assert.Equal(t, []string{}, New(reopened).Get())
}

func TestBadgerStore_ConcurrentSaves(t *testing.T) {
	store, err := OpenBadgerStore("", nil)
	require.NoError(t, err)
	defer store.Close()

	saveConcurrently(store, 8)
	got := New(store).Get()
	sort.Strings(got)
	assert.Equal(t, []string{"q0", "q1", "q2", "q3", "q4", "q5", "q6", "q7"}, got)
}

func TestBadgerStore_UpdateError(t *testing.T) {
	store, err := OpenBadgerStore("", nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("k", "v"))
	boom := errors.New("boom")
	err = store.Update("k", func(old string, ok bool) (string, error) {
		assert.True(t, ok)
		assert.Equal(t, "v", old)
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	v, _, _ := store.Get("k")
	assert.Equal(t, "v", v)
}

func TestBadgerStore_InMemory(t *testing.T) {
	store, err := OpenBadgerStore("", nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("k", "v"))
	v, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
