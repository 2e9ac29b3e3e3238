package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(nil)
	store.now = clock.Now
	return store, clock
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	store, _ := newTestStore()

	sess, err := store.Create()
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, []FileKind{FileEvents, FileClusters}, sess.Missing())
	assert.Equal(t, 1, store.Count())

	require.NoError(t, store.PutFile(sess.ID, FileEvents, File{Name: "events.xlsx", Data: []byte("abc")}))

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.File(FileEvents))
	assert.Equal(t, "events.xlsx", got.File(FileEvents).Name)
	assert.Equal(t, 3, got.File(FileEvents).Size)
	assert.Equal(t, []FileKind{FileClusters}, got.Missing())

	require.NoError(t, store.Delete(sess.ID))
	_, err = store.Get(sess.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.Delete(sess.ID), ErrNotFound))
}

func TestMemoryStore_Isolation(t *testing.T) {
	store, _ := newTestStore()

	a, err := store.Create()
	require.NoError(t, err)
	b, err := store.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, store.PutFile(a.ID, FileEvents, File{Name: "a.xlsx", Data: []byte("a")}))

	gotB, err := store.Get(b.ID)
	require.NoError(t, err)
	assert.Nil(t, gotB.File(FileEvents))

	// copies returned by Get do not alias the stored session
	gotA, err := store.Get(a.ID)
	require.NoError(t, err)
	delete(gotA.Files, FileEvents)
	again, err := store.Get(a.ID)
	require.NoError(t, err)
	assert.NotNil(t, again.File(FileEvents))
}

func TestMemoryStore_PutFileUnknownSession(t *testing.T) {
	store, _ := newTestStore()
	err := store.PutFile("missing", FileEvents, File{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_CleanupExpired(t *testing.T) {
	store, clock := newTestStore()

	idle, err := store.Create()
	require.NoError(t, err)
	active, err := store.Create()
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = store.Get(active.ID)
	require.NoError(t, err)
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, store.CleanupExpired(30*time.Minute))
	_, err = store.Get(idle.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.Get(active.ID)
	assert.NoError(t, err)
}

func TestMemoryStore_RunJanitor(t *testing.T) {
	store := NewMemoryStore(nil)
	_, err := store.Create()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, time.Nanosecond, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Count() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := store.Create()
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, store.PutFile(sess.ID, FileClusters, File{Data: []byte("x")}))
			_, err = store.Get(sess.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, store.Count())
}

func TestParseFileKind(t *testing.T) {
	kind, err := ParseFileKind("events")
	require.NoError(t, err)
	assert.Equal(t, FileEvents, kind)

	kind, err = ParseFileKind("clusters")
	require.NoError(t, err)
	assert.Equal(t, FileClusters, kind)

	_, err = ParseFileKind("other")
	assert.Error(t, err)
}
