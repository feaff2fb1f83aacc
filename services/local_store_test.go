package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubot/rag/models"
)

func entry(id, text string, embedding []float32) Entry {
	return Entry{
		ID:        id,
		Embedding: embedding,
		Chunk:     models.Chunk{Text: text, Metadata: models.DocMetadata{Source: id + ".txt", Type: "txt"}},
	}
}

func TestLocalStore_EmptyByDefault(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "vs"))

	exists, err := store.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLocalStore_AddPersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vs")
	ctx := context.Background()

	store := NewLocalStore(dir)
	require.NoError(t, store.Add(ctx, []Entry{
		entry("a", "alpha", []float32{1, 0}),
		entry("b", "beta", []float32{0, 1}),
	}))

	reopened := NewLocalStore(dir)
	exists, err := reopened.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLocalStore_SearchOrdersBySimilarity(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "vs"))
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Entry{
		entry("far", "far away", []float32{0, 1}),
		entry("near", "spot on", []float32{1, 0}),
		entry("mid", "halfway", []float32{1, 1}),
	}))

	chunks, err := store.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "spot on", chunks[0].Text)
	assert.Equal(t, "halfway", chunks[1].Text)
	assert.Equal(t, "far away", chunks[2].Text)
}

func TestLocalStore_SearchRespectsK(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "vs"))
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Entry{
		entry("a", "one", []float32{1, 0}),
		entry("b", "two", []float32{0.9, 0.1}),
		entry("c", "three", []float32{0, 1}),
	}))

	for k := 1; k <= 3; k++ {
		chunks, err := store.Search(ctx, []float32{1, 0}, k)
		require.NoError(t, err)
		assert.Len(t, chunks, k)
	}

	// Asking for more than exists returns everything.
	chunks, err := store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestLocalStore_DeterministicTieBreak(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vs")
	ctx := context.Background()

	store := NewLocalStore(dir)
	require.NoError(t, store.Add(ctx, []Entry{
		entry("first", "tied one", []float32{1, 0}),
		entry("second", "tied two", []float32{1, 0}),
	}))

	for i := 0; i < 5; i++ {
		chunks, err := store.Search(ctx, []float32{1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "tied one", chunks[0].Text, "ties must keep insertion order")
		assert.Equal(t, "tied two", chunks[1].Text)
	}
}

func TestLocalStore_CorruptFileSurfacesDistinctError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, localIndexFile), []byte("{not json"), 0644))

	store := NewLocalStore(dir)
	_, err := store.Exists(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexCorrupt)
}

func TestLocalStore_DropRemovesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vs")
	ctx := context.Background()

	store := NewLocalStore(dir)
	require.NoError(t, store.Add(ctx, []Entry{entry("a", "text", []float32{1})}))
	require.NoError(t, store.Drop(ctx))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	exists, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}
