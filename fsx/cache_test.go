package fsx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingFS struct {
	FS
	statCalls int
}

func (c *countingFS) Stat(path string) (Info, error) {
	c.statCalls++
	return c.FS.Stat(path)
}

func TestCachedStatMemoizesWithinTTL(t *testing.T) {
	inner := &countingFS{FS: NewMock(map[string]string{"/proj/src/foo.js": "x"})}
	cached := NewCached(inner, time.Minute)

	info1, err := cached.Stat("/proj/src/foo.js")
	require.NoError(t, err)
	require.Equal(t, FileEntry, info1.Kind)

	info2, err := cached.Stat("/proj/src/foo.js")
	require.NoError(t, err)
	require.Equal(t, info1, info2)
	require.Equal(t, 1, inner.statCalls, "second probe must be served from cache")
}

func TestCachedNegativeCaching(t *testing.T) {
	inner := &countingFS{FS: NewMock(map[string]string{})}
	cached := NewCached(inner, time.Minute)

	info1, err := cached.Stat("/missing")
	require.NoError(t, err)
	require.Equal(t, NoEntry, info1.Kind)

	_, err = cached.Stat("/missing")
	require.NoError(t, err)
	require.Equal(t, 1, inner.statCalls, "absence must also be cached")
}

func TestCachedExpiresAfterTTL(t *testing.T) {
	inner := &countingFS{FS: NewMock(map[string]string{"/a": "x"})}
	cached := NewCached(inner, time.Millisecond)

	_, err := cached.Stat("/a")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cached.Stat("/a")
	require.NoError(t, err)
	require.Equal(t, 2, inner.statCalls, "probe must re-run after expiry")
}

func TestPurgeClearsSpecificPathAndAncestors(t *testing.T) {
	inner := &countingFS{FS: NewMock(map[string]string{"/proj/src/foo.js": "x"})}
	cached := NewCached(inner, time.Hour)

	_, _ = cached.Stat("/proj/src/foo.js")
	_, _ = cached.Stat("/proj/src")
	require.Equal(t, 2, inner.statCalls)

	cached.Purge("/proj/src/foo.js")

	_, _ = cached.Stat("/proj/src/foo.js")
	require.Equal(t, 3, inner.statCalls, "purged path must be re-probed")

	_, _ = cached.Stat("/proj/src")
	require.Equal(t, 4, inner.statCalls, "purge must invalidate ancestors too")
}

func TestPurgeAllClearsEverything(t *testing.T) {
	inner := &countingFS{FS: NewMock(map[string]string{"/a": "1", "/b": "2"})}
	cached := NewCached(inner, time.Hour)

	_, _ = cached.Stat("/a")
	_, _ = cached.Stat("/b")
	require.Equal(t, 2, inner.statCalls)

	cached.Purge()

	_, _ = cached.Stat("/a")
	_, _ = cached.Stat("/b")
	require.Equal(t, 4, inner.statCalls)
}
