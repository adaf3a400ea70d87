package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReadList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	path, err := s.Save("report.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.csv"), path)

	data, err := s.Read("report.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report.csv", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestRejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../x.csv", "/etc/passwd"} {
		_, err := s.Save(name, []byte("x"))
		assert.Error(t, err, name)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = s.Save("old.pdf", []byte("old"))
	require.NoError(t, err)
	_, err = s.Save("new.pdf", []byte("new"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.pdf"), past, past))

	deleted, err := s.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.pdf"}, deleted)

	_, err = os.Stat(filepath.Join(dir, "new.pdf"))
	assert.NoError(t, err)
	assert.NoError(t, s.Delete("old.pdf"))
}
