package gallery

import (
	"context"

	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/export"
)

// Backend はギャラリーを保存するキーバリューストアです。
// kvstore パッケージの各実装がこれを満たします。
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ImageGenerator はプロンプトから1枚の壁紙レコードを作る生成クライアントです。
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (*domain.WallpaperImage, error)
}

// Exporter は画像を端末のメディアライブラリへ保存します。
type Exporter interface {
	Export(ctx context.Context, imageURL string) (*export.Asset, error)
}
