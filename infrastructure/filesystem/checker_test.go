package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"steam-publisher/domain/publish"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_ResolveBuildDir(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "Windows/Game.exe")
	buildDir := filepath.Join(root, "Windows")

	c := NewChecker()

	t.Run("directory", func(t *testing.T) {
		got, err := c.ResolveBuildDir(buildDir)
		require.NoError(t, err)
		assert.Equal(t, buildDir, got)
	})

	t.Run("file resolves to parent", func(t *testing.T) {
		got, err := c.ResolveBuildDir(filepath.Join(buildDir, "Game.exe"))
		require.NoError(t, err)
		assert.Equal(t, buildDir, got)
	})

	t.Run("relative path becomes absolute", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		t.Cleanup(func() { _ = os.Chdir(wd) })
		require.NoError(t, os.Chdir(root))

		got, err := c.ResolveBuildDir("Windows")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
		assert.Equal(t, "Windows", filepath.Base(got))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := c.ResolveBuildDir(filepath.Join(root, "Linux"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, publish.ErrBuildPathNotFound))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := c.ResolveBuildDir("")
		assert.True(t, errors.Is(err, publish.ErrBuildPathNotFound))
	})
}

func TestChecker_ExistsAndIsDir(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "file.txt")
	c := NewChecker()

	assert.True(t, c.Exists(filepath.Join(root, "file.txt")))
	assert.False(t, c.IsDir(filepath.Join(root, "file.txt")))
	assert.True(t, c.IsDir(root))
	assert.False(t, c.Exists(filepath.Join(root, "nope")))
}
