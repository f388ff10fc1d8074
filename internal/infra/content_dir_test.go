package infra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentDir_SaveAndRemove(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	dir, err := NewContentDir(root)
	require.NoError(t, err)

	n, err := dir.Save("a1.webm", strings.NewReader("audio bytes"))
	require.NoError(t, err)
	assert.EqualValues(t, len("audio bytes"), n)

	path, err := dir.Path("a1.webm")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a1.webm"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio bytes", string(data))

	require.NoError(t, dir.Remove("a1.webm"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, dir.Remove("a1.webm"))
}

func TestContentDir_NoOverwrite(t *testing.T) {
	dir, err := NewContentDir(t.TempDir())
	require.NoError(t, err)

	_, err = dir.Save("same.mp3", strings.NewReader("first"))
	require.NoError(t, err)

	_, err = dir.Save("same.mp3", strings.NewReader("second"))
	assert.Error(t, err)

	path, _ := dir.Path("same.mp3")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestContentDir_RejectsUnsafeNames(t *testing.T) {
	dir, err := NewContentDir(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../chat.db", "sub/file.mp3", `..\win.mp3`, "/etc/passwd"} {
		t.Run(name, func(t *testing.T) {
			_, err := dir.Path(name)
			assert.ErrorIs(t, err, ErrInvalidContentName)

			_, err = dir.Save(name, strings.NewReader("x"))
			assert.ErrorIs(t, err, ErrInvalidContentName)

			assert.ErrorIs(t, dir.Remove(name), ErrInvalidContentName)
		})
	}
}
