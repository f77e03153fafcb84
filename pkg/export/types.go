package export

import (
	"context"
	"errors"
)

var (
	// ErrEmptyURL はエクスポート対象の URL が空であることを示します。
	ErrEmptyURL = errors.New("image url is empty")
	// ErrPermissionDenied はメディアライブラリへの書き込み権限が無いことを示します。
	ErrPermissionDenied = errors.New("media library permission denied")
	// ErrDownloadFailed は画像のダウンロードまたはローカル保存に失敗したことを示します。
	ErrDownloadFailed = errors.New("image download failed")
	// ErrAssetCreationFailed はメディアライブラリへの登録に失敗したことを示します。
	ErrAssetCreationFailed = errors.New("media asset creation failed")
)

// Asset はメディアライブラリに登録された1件です。
type Asset struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// Permission はメディアライブラリへの書き込み権限を確認・要求します。
type Permission interface {
	Status(ctx context.Context) (Status, error)
	Request(ctx context.Context) (Status, error)
}

// Fetcher は URL から画像のバイト列を取得します。
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// MediaLibrary はローカルファイルを新しいアセットとして登録します。
type MediaLibrary interface {
	CreateAsset(ctx context.Context, localPath string) (*Asset, error)
}

// HTTPClient は、HTTPリクエストを実行し、URLからデータを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
