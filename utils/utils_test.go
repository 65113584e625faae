package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	isDir, ok, err := Exists(file)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, isDir)

	isDir, ok, err = Exists(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, isDir)

	_, ok, err = Exists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStemOf(t *testing.T) {
	assert.Equal(t, "photo", StemOf("/tmp/photo.JPG"))
	assert.Equal(t, "archive.tar", StemOf("archive.tar.gz"))
	assert.Equal(t, "README", StemOf("README"))
	assert.Equal(t, ".hidden", StemOf(".hidden"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Open Graph", DisplayName("open-graph"))
	assert.Equal(t, "Contain Letterbox", DisplayName("contain_letterbox"))
	assert.Equal(t, "WEBP", UpperName("webp"))
}
