package export

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/google/uuid"

	"github.com/shouni/wallpaper-kit/pkg/blob"
)

// DefaultAlbum はライブラリ内で壁紙をまとめるアルバム名です。
const DefaultAlbum = "Wallpapers"

// BlobLibrary は blob.Writer（ローカルの Pictures ディレクトリや S3 バケット）を
// メディアライブラリとして扱う MediaLibrary です。
type BlobLibrary struct {
	writer blob.Writer
	album  string
	newID  func() string
}

// NewBlobLibrary は保存先とアルバム名を指定して初期化します。
func NewBlobLibrary(writer blob.Writer, album string) (*BlobLibrary, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	if album == "" {
		album = DefaultAlbum
	}
	return &BlobLibrary{writer: writer, album: album, newID: uuid.NewString}, nil
}

// CreateAsset はローカルファイルを読み込み、新しいアセットとして保存します。
func (l *BlobLibrary) CreateAsset(ctx context.Context, localPath string) (*Asset, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}
	id := l.newID()
	uri, err := l.writer.Put(ctx, path.Join(l.album, id+".jpg"), data, "image/jpeg")
	if err != nil {
		return nil, err
	}
	return &Asset{ID: id, URI: uri}, nil
}
