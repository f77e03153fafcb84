package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/wallpaper-kit/pkg/blob"
)

func TestBlobLibrary_CreateAsset(t *testing.T) {
	ctx := context.Background()

	libDir := t.TempDir()
	writer, err := blob.NewLocal(libDir)
	require.NoError(t, err)

	lib, err := NewBlobLibrary(writer, "")
	require.NoError(t, err)
	lib.newID = func() string { return "fixed-id" }

	src := filepath.Join(t.TempDir(), "wallpaper_1.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg-bytes"), 0o644))

	asset, err := lib.CreateAsset(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", asset.ID)
	assert.True(t, strings.HasPrefix(asset.URI, "file://"), asset.URI)

	data, err := os.ReadFile(filepath.Join(libDir, DefaultAlbum, "fixed-id.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	t.Run("元ファイルが無ければエラーなのだ", func(t *testing.T) {
		_, err := lib.CreateAsset(ctx, filepath.Join(t.TempDir(), "missing.jpg"))
		assert.Error(t, err)
	})

	t.Run("nilチェック", func(t *testing.T) {
		_, err := NewBlobLibrary(nil, "")
		assert.Error(t, err)
	})
}
