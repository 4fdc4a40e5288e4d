package serve

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLatestArtifactPicksNewestTimestamp(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "digest_20260829_090000.html", "old")
	writeArtifact(t, dir, "digest_20260830_101500.html", "new")
	writeArtifact(t, dir, "digest_20260830_101500.json", "{}")
	writeArtifact(t, dir, "notes.txt", "ignored")

	s := New(":0", dir)
	path, err := s.latestArtifact(".html")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "digest_20260830_101500.html"), path)
}

func TestLatestArtifactEmptyDir(t *testing.T) {
	s := New(":0", t.TempDir())

	path, err := s.latestArtifact(".html")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLatestArtifactMissingDir(t *testing.T) {
	s := New(":0", filepath.Join(t.TempDir(), "nope"))

	path, err := s.latestArtifact(".html")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestHandleLatestHTML(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "digest_20260830_101500.html", "<html>digest</html>")
	s := New(":0", dir)

	rec := httptest.NewRecorder()
	s.handleLatestHTML(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>digest</html>", rec.Body.String())
}

func TestHandleLatestHTMLNotGenerated(t *testing.T) {
	s := New(":0", t.TempDir())

	rec := httptest.NewRecorder()
	s.handleLatestHTML(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, 404, rec.Code)
}

func TestHandleLatestJSON(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "digest_20260830_101500.json", `{"channels":[]}`)
	s := New(":0", dir)

	rec := httptest.NewRecorder()
	s.handleLatestJSON(rec, httptest.NewRequest("GET", "/archive.json", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, `{"channels":[]}`, rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	s := New(":0", t.TempDir())

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
