package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()
	l, err := New(opts...)
	require.NoError(t, err)
	return l
}

func TestSeedCatalog(t *testing.T) {
	l := newTestLibrary(t)

	docs := l.Documents("")
	require.Len(t, docs, 6)
	assert.Equal(t, "doc6", docs[5].ID)
	for i := 1; i < len(docs); i++ {
		assert.False(t, docs[i].UploadDate.After(docs[i-1].UploadDate), "documents must be newest first")
	}

	voices, err := l.TTSVoices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 4)
	assert.Equal(t, "voice1", voices[0].ID)
	assert.Equal(t, "Emma (Female)", voices[0].Name)
	assert.Equal(t, "en-GB", voices[3].Language)
}

func TestDocumentsFilter(t *testing.T) {
	l := newTestLibrary(t)

	pdfs := l.Documents("PDF")
	assert.Len(t, pdfs, 3)

	css := l.Documents("css")
	require.Len(t, css, 1)
	assert.Equal(t, "doc5", css[0].ID)

	assert.Empty(t, l.Documents("nothing like this"))
}

func TestDocumentLookup(t *testing.T) {
	l := newTestLibrary(t)

	d, err := l.Document("doc4")
	require.NoError(t, err)
	assert.Equal(t, "Introduction to React Hooks", d.Title)
	assert.True(t, d.IsMarkdown())

	_, err = l.Document("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSpeakableTextDropsCode(t *testing.T) {
	l := newTestLibrary(t)

	d, err := l.Document("doc4")
	require.NoError(t, err)

	text := d.SpeakableText()
	assert.Contains(t, text, "Hooks are a new addition in React 16.8.")
	assert.NotContains(t, text, "useState(0)")
	assert.NotContains(t, text, "```")

	plain, err := l.Document("doc1")
	require.NoError(t, err)
	assert.Equal(t, plain.Content, plain.SpeakableText())
}

func TestFindAndResolve(t *testing.T) {
	l := newTestLibrary(t)

	found := l.Find("react")
	require.NotEmpty(t, found)
	assert.Equal(t, "doc4", found[0].ID)

	d, err := l.Resolve("doc2")
	require.NoError(t, err)
	assert.Equal(t, "doc2", d.ID)

	d, err = l.Resolve("mlfund")
	require.NoError(t, err)
	assert.Equal(t, "doc3", d.ID)

	_, err = l.Resolve("zzzzzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddFile(t *testing.T) {
	l := newTestLibrary(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nFirst line."), 0o600))

	d, err := l.AddFile(path)
	require.NoError(t, err)
	assert.Equal(t, "notes", d.Title)
	assert.Equal(t, "md", d.FileType)
	assert.NotEmpty(t, d.ID)

	docs := l.Documents("")
	require.Len(t, docs, 7)
	assert.Equal(t, d.ID, docs[0].ID)

	require.NoError(t, os.WriteFile(path, []byte("Second version."), 0o600))
	again, err := l.AddFile(path)
	require.NoError(t, err)
	assert.Equal(t, d.ID, again.ID)
	assert.Equal(t, "Second version.", again.Content)
	assert.Len(t, l.Documents(""), 7)
}

func TestAddFileMarkdownExtensions(t *testing.T) {
	l := newTestLibrary(t)
	dir := t.TempDir()

	for _, name := range []string{"notes.mkd", "notes.MDOWN", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("One. Two."), 0o600))

		d, err := l.AddFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, name != "notes.txt", d.IsMarkdown(), name)
		assert.Equal(t, name == "notes.txt", d.IsPlainText(), name)
	}
}

func TestAddFileRejectsUnsupported(t *testing.T) {
	l := newTestLibrary(t)
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	_, err := l.AddFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = l.AddFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	l := newTestLibrary(t)

	require.NoError(t, l.Delete("doc1"))
	_, err := l.Document("doc1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, l.Delete("doc1"), ErrNotFound)
}

func TestLoadCatalog(t *testing.T) {
	l := newTestLibrary(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	catalog := `
voices:
  - id: voice1
    name: Emma (Renamed)
    language: en-US
  - id: voice5
    name: Olivia (Female)
    language: en-AU
documents:
  - title: Local Notes
    upload_date: 2025-06-01
    file_type: txt
    content: Hello there. General Kenobi.
`
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))
	require.NoError(t, l.LoadCatalog(path))

	docs := l.Documents("")
	require.Len(t, docs, 7)
	assert.Equal(t, "Local Notes", docs[0].Title)
	assert.NotEmpty(t, docs[0].ID)

	voices, err := l.TTSVoices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 5)
	assert.Equal(t, "Emma (Renamed)", voices[0].Name)

	assert.Error(t, l.LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestTTSVoicesHonoursContext(t *testing.T) {
	l := newTestLibrary(t, WithLatency(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.TTSVoices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTTSVoicesLatency(t *testing.T) {
	l := newTestLibrary(t, WithLatency(20*time.Millisecond))

	start := time.Now()
	voices, err := l.TTSVoices(context.Background())
	require.NoError(t, err)
	assert.Len(t, voices, 4)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
