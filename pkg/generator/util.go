package generator

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/utils"
)

// assetPrefix は生成画像を保存するキーの接頭辞なのだ。
const assetPrefix = "generated"

// extensionFor は MIME タイプから拡張子を決めるのだ。
func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

// storeImage は画像を sink に保存し、そのURIを URL にしたレコードを作るのだ。
func storeImage(ctx context.Context, sink AssetSink, prompt string, data []byte, mimeType string, now time.Time) (*domain.WallpaperImage, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: unexpected content type %s", ErrNoImage, mimeType)
	}

	key := path.Join(assetPrefix, utils.MillisID(now)+extensionFor(mimeType))
	uri, err := sink.Put(ctx, key, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetStoreFailed, err)
	}
	img := domain.NewWallpaperImage(prompt, uri, now)
	return &img, nil
}
