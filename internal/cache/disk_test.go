package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskCache_PutGet(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	require.NoError(t, err)
	defer dc.Close()

	key := ContentKey("One. Two.")
	require.NoError(t, dc.Put(key, []string{"One.", "Two."}))
	assert.True(t, dc.Contains(key))

	got, ok := dc.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"One.", "Two."}, got)

	_, ok = dc.Get(ContentKey("other"))
	assert.False(t, ok)

	stats := dc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.ItemCount)
}

func TestDiskCache_Compression(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	require.NoError(t, err)
	defer dc.Close()

	sentences := make([]string, 200)
	for i := range sentences {
		sentences[i] = "This sentence repeats a great deal."
	}
	key := ContentKey(strings.Join(sentences, " "))
	require.NoError(t, dc.Put(key, sentences))

	entry := dc.index[key]
	require.NotNil(t, entry)
	assert.True(t, entry.Compressed)
	assert.Less(t, entry.Size, entry.OriginalSize)

	got, ok := dc.Get(key)
	require.True(t, ok)
	assert.Equal(t, sentences, got)
}

func TestDiskCache_Persistence(t *testing.T) {
	dir := t.TempDir()
	key := ContentKey("Persist me.")

	dc, err := NewDiskCache(dir, 1<<20, 3)
	require.NoError(t, err)
	require.NoError(t, dc.Put(key, []string{"Persist me."}))
	require.NoError(t, dc.Close())

	reopened, err := NewDiskCache(dir, 1<<20, 0)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"Persist me."}, got)
	assert.Positive(t, reopened.Size())
}

func TestDiskCache_Eviction(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 100, 0)
	require.NoError(t, err)
	defer dc.Close()

	require.NoError(t, dc.Put("a", []string{"Alpha sentence here."}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, dc.Put("b", []string{"Bravo sentence here."}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, dc.Put("c", []string{"Charlie sentence here."}))

	assert.LessOrEqual(t, dc.Size(), int64(100))
	assert.False(t, dc.Contains("a"))
	assert.True(t, dc.Contains("c"))
	assert.Positive(t, dc.Stats().Evictions)
}

func TestDiskCache_ItemTooLarge(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 10, 0)
	require.NoError(t, err)
	defer dc.Close()

	err = dc.Put("big", []string{"This will never fit in ten bytes."})
	assert.ErrorIs(t, err, ErrItemTooLarge)
}

func TestDiskCache_CorruptedEntry(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 0)
	require.NoError(t, err)
	defer dc.Close()

	require.NoError(t, dc.Put("k", []string{"Fine."}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.seg"), []byte("sentences: [unterminated"), 0o644))

	_, ok := dc.Get("k")
	assert.False(t, ok)
	assert.False(t, dc.Contains("k"))
}

func TestDiskCache_CorruptedIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFile), []byte("{{not yaml"), 0o644))

	dc, err := NewDiskCache(dir, 1<<20, 0)
	require.NoError(t, err)
	defer dc.Close()
	assert.Equal(t, int64(0), dc.Size())
}

func TestDiskCache_ClearAndRemoveOlderThan(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 0)
	require.NoError(t, err)
	defer dc.Close()

	require.NoError(t, dc.Put("a", []string{"A."}))
	require.NoError(t, dc.Put("b", []string{"B."}))

	assert.Equal(t, 2, dc.RemoveOlderThan(time.Now().Add(time.Minute)))
	assert.Equal(t, int64(0), dc.Size())

	require.NoError(t, dc.Put("c", []string{"C."}))
	require.NoError(t, dc.Clear())
	assert.False(t, dc.Contains("c"))
}
