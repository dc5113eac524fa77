package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/telemetry"
)

type chunks struct {
	mu   sync.Mutex
	data []string
}

func (c *chunks) add(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = append(c.data, string(p))
}

func (c *chunks) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.data...)
}

func TestLogBatcher_FlushesAfterTimeLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		got := &chunks{}
		b := telemetry.NewLogBatcher(1024, 50*time.Millisecond, got.add)
		defer func() { _ = b.Close() }()

		_, err := b.Write([]byte("hello "))
		require.NoError(t, err)
		_, err = b.Write([]byte("world\n"))
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, got.get())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"hello world\n"}, got.get())
	})
}

func TestLogBatcher_FlushesAtSizeLimit(t *testing.T) {
	got := &chunks{}
	b := telemetry.NewLogBatcher(4, time.Hour, got.add)

	n, err := b.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, []string{"abcdef"}, got.get())

	require.NoError(t, b.Close())
}

func TestLogBatcher_Close(t *testing.T) {
	got := &chunks{}
	b := telemetry.NewLogBatcher(0, 0, got.add)

	_, err := b.Write([]byte("tail"))
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, []string{"tail"}, got.get())

	_, err = b.Write([]byte("late"))
	require.Error(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, []string{"tail"}, got.get())
}

func TestLogBatcher_FlushEmpty(t *testing.T) {
	got := &chunks{}
	b := telemetry.NewLogBatcher(0, 0, got.add)
	b.Flush()
	require.NoError(t, b.Close())
	assert.Empty(t, got.get())
}
