package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocuments_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "documents")

	docs, err := LoadDocuments(dir)
	require.NoError(t, err)
	assert.Empty(t, docs)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadDocuments_EmptyDirectory(t *testing.T) {
	docs, err := LoadDocuments(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadDocuments_TxtFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello world"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.docx"), []byte("nope"), 0644))

	docs, err := LoadDocuments(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello world", docs[0].Text)
	assert.Equal(t, "notes.txt", docs[0].Metadata.Source)
	assert.Equal(t, "txt", docs[0].Metadata.Type)
	assert.Nil(t, docs[0].Metadata.Page)
}

func TestLoadDocuments_CorruptPDFIsSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.txt"), []byte("valid content"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a real pdf"), 0644))

	docs, err := LoadDocuments(dir)
	require.NoError(t, err, "one corrupt file must not block ingestion of the rest")
	require.Len(t, docs, 1)
	assert.Equal(t, "good.txt", docs[0].Metadata.Source)
}

func TestLoadDocuments_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "hidden.txt"), []byte("nested"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.txt"), []byte("top level"), 0644))

	docs, err := LoadDocuments(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "top.txt", docs[0].Metadata.Source)
}

func TestLoadDocuments_DeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("second"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first"), 0644))

	docs, err := LoadDocuments(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Metadata.Source)
	assert.Equal(t, "b.txt", docs[1].Metadata.Source)
}
