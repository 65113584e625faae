package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leeforge/imagekit/errors"
)

func TestLocalProviderSave(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	out, err := p.Save(ctx, SaveInput{File: strings.NewReader("first"), Filename: "photo.webp"})
	require.NoError(t, err)
	assert.Equal(t, "photo.webp", out.Filename)
	assert.Equal(t, int64(5), out.Size)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	exists, err := p.Exists(ctx, "photo.webp")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalProviderSaveKeepsExisting(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	names := make([]string, 0, 3)
	for _, body := range []string{"a", "b", "c"} {
		out, err := p.Save(ctx, SaveInput{File: strings.NewReader(body), Filename: "photo.webp"})
		require.NoError(t, err)
		names = append(names, out.Filename)
	}
	assert.Equal(t, []string{"photo.webp", "photo-1.webp", "photo-2.webp"}, names)

	data, err := os.ReadFile(filepath.Join(p.BasePath(), "photo.webp"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestLocalProviderSaveOverwrite(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	_, err = p.Save(ctx, SaveInput{File: strings.NewReader("old content"), Filename: "a.png"})
	require.NoError(t, err)
	out, err := p.Save(ctx, SaveInput{File: strings.NewReader("new"), Filename: "a.png", Overwrite: true})
	require.NoError(t, err)

	assert.Equal(t, "a.png", out.Filename)
	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLocalProviderSaveRemovesPartialFile(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	src := io.MultiReader(strings.NewReader("half an image"), iotest.ErrReader(errors.New("read interrupted")))
	_, err = p.Save(ctx, SaveInput{File: src, Filename: "broken.png"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage))

	exists, err := p.Exists(ctx, "broken.png")
	require.NoError(t, err)
	assert.False(t, exists)
	entries, err := os.ReadDir(p.BasePath())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalProviderRejectsPathNames(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../escape.png", "sub/dir.png"} {
		_, err := p.Save(context.Background(), SaveInput{File: strings.NewReader("x"), Filename: name})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalid), name)
	}
}

func TestLocalProviderFoldersAndList(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"a.png", "b.png", "icon.ico"} {
		_, err := p.Save(ctx, SaveInput{File: strings.NewReader(name), Filename: name, Folder: "set"})
		require.NoError(t, err)
	}

	files, err := p.List(ctx, ListInput{Folder: "set"})
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = p.List(ctx, ListInput{Folder: "set", Prefix: "icon"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "icon.ico", files[0].Name)

	_, err = p.List(ctx, ListInput{Folder: "nope"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestLocalProviderDelete(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	_, err = p.Save(ctx, SaveInput{File: strings.NewReader("x"), Filename: "gone.jpg"})
	require.NoError(t, err)

	require.NoError(t, p.Delete(ctx, "gone.jpg"))
	require.NoError(t, p.Delete(ctx, "gone.jpg"))

	exists, err := p.Exists(ctx, "gone.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	first, err := p.Save(ctx, SaveInput{File: strings.NewReader("one"), Filename: "x.png"})
	require.NoError(t, err)
	second, err := p.Save(ctx, SaveInput{File: strings.NewReader("two"), Filename: "x.png"})
	require.NoError(t, err)

	assert.Equal(t, "x.png", first.Filename)
	assert.Equal(t, "x-1.png", second.Filename)

	data, ok := p.Bytes("x-1.png")
	require.True(t, ok)
	assert.Equal(t, "two", string(data))

	files, err := p.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	require.NoError(t, p.Delete(ctx, "x.png"))
	exists, err := p.Exists(ctx, "x.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProviderFactory(t *testing.T) {
	f := NewProviderFactory()

	local, err := f.CreateFromConfig(ProviderConfig{Type: "local", BasePath: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", local.Name())

	mem, err := f.CreateFromConfig(ProviderConfig{Type: "memory"})
	require.NoError(t, err)
	f.Register("dry-run", mem)

	got, err := f.Get("dry-run")
	require.NoError(t, err)
	assert.Equal(t, "memory", got.Name())
	assert.Equal(t, []string{"dry-run"}, f.Names())

	_, err = f.Get("s3")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = f.CreateFromConfig(ProviderConfig{Type: "s3"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalid))
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{"a.tar.gz": true, "a.tar-1.gz": true, "noext": true}
	lookup := func(name string) (bool, error) { return taken[name], nil }

	got, err := uniqueName("a.tar.gz", lookup)
	require.NoError(t, err)
	assert.Equal(t, "a.tar-2.gz", got)

	got, err = uniqueName("noext", lookup)
	require.NoError(t, err)
	assert.Equal(t, "noext-1", got)
}
