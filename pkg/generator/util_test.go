package generator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreImage(t *testing.T) {
	ctx := context.Background()

	t.Run("MIMEタイプが無ければ中身から判定するのだ", func(t *testing.T) {
		sink := &mockSink{}
		png := []byte("\x89PNG\r\n\x1a\n0000")
		img, err := storeImage(ctx, sink, "p", png, "", fixedNow())
		require.NoError(t, err)
		assert.Equal(t, "image/png", sink.lastContentType)
		assert.Equal(t, "generated/1718000000123.png", sink.lastKey)
		assert.Equal(t, "p", img.Prompt)
	})

	t.Run("画像でなければErrNoImageなのだ", func(t *testing.T) {
		_, err := storeImage(ctx, &mockSink{}, "p", []byte("hello"), "", fixedNow())
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("空データはErrNoImageなのだ", func(t *testing.T) {
		_, err := storeImage(ctx, &mockSink{}, "p", nil, "image/png", fixedNow())
		assert.ErrorIs(t, err, ErrNoImage)
	})
}

func TestIsNoResult(t *testing.T) {
	for _, err := range []error{ErrRequestFailed, ErrMalformedResponse, ErrNoImage, ErrBlocked, ErrAssetStoreFailed} {
		assert.True(t, IsNoResult(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
	assert.False(t, IsNoResult(fmt.Errorf("other")))
	assert.False(t, IsNoResult(nil))
}
