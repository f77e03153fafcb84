package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shouni/wallpaper-kit/pkg/imgutil"
	"github.com/shouni/wallpaper-kit/pkg/utils"
)

// Exporter はリモート画像をアプリ専用ディレクトリにダウンロードし、
// メディアライブラリへ登録します。
type Exporter struct {
	permission Permission
	fetcher    Fetcher
	library    MediaLibrary
	dir        string
	quality    int
	now        func() time.Time
}

// NewExporter は依存関係を注入して Exporter を初期化します。
// dir はダウンロードしたファイルを置くアプリ専用ディレクトリです。
func NewExporter(permission Permission, fetcher Fetcher, library MediaLibrary, dir string) (*Exporter, error) {
	if permission == nil {
		return nil, fmt.Errorf("permission is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if library == nil {
		return nil, fmt.Errorf("library is required")
	}
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	return &Exporter{
		permission: permission,
		fetcher:    fetcher,
		library:    library,
		dir:        dir,
		quality:    imgutil.DefaultJPEGQuality,
		now:        time.Now,
	}, nil
}

// Export は imageURL の画像をメディアライブラリに保存し、作成されたアセットを返します。
// 権限が無ければダウンロードは行いません。登録に失敗した場合はダウンロード済みファイルを削除します。
func (e *Exporter) Export(ctx context.Context, imageURL string) (*Asset, error) {
	if imageURL == "" {
		return nil, ErrEmptyURL
	}
	if err := e.ensurePermission(ctx); err != nil {
		return nil, err
	}

	localPath, err := e.download(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	asset, err := e.library.CreateAsset(ctx, localPath)
	if err != nil {
		if rmErr := os.Remove(localPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.WarnContext(ctx, "ダウンロード済みファイルの削除に失敗しました", "path", localPath, "error", rmErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrAssetCreationFailed, err)
	}

	slog.InfoContext(ctx, "メディアライブラリに保存しました", "asset_id", asset.ID, "uri", asset.URI)
	return asset, nil
}

// SaveToLibrary は Export の真偽値版です。失敗理由はログにのみ残ります。
func (e *Exporter) SaveToLibrary(ctx context.Context, imageURL string) bool {
	if _, err := e.Export(ctx, imageURL); err != nil {
		slog.ErrorContext(ctx, "メディアライブラリへの保存に失敗しました", "url", imageURL, "error", err)
		return false
	}
	return true
}

func (e *Exporter) ensurePermission(ctx context.Context) error {
	status, err := e.permission.Status(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	if status == Undetermined {
		if status, err = e.permission.Request(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
	}
	if status != Granted {
		return ErrPermissionDenied
	}
	return nil
}

// download は画像を取得して wallpaper_<unixms>.jpg として保存し、そのパスを返すのだ。
func (e *Exporter) download(ctx context.Context, imageURL string) (string, error) {
	data, err := e.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	jpegData, converted, err := imgutil.EnsureJPEG(data, e.quality)
	if err != nil {
		return "", err
	}
	if converted {
		slog.DebugContext(ctx, "JPEGに変換しました", "url", imageURL)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", err
	}
	return e.writeUnique(jpegData)
}

// writeUnique は同じミリ秒に複数保存しても上書きしないよう連番を付けて書き込みます。
func (e *Exporter) writeUnique(data []byte) (string, error) {
	base := "wallpaper_" + utils.MillisID(e.now())
	for i := 0; i < 100; i++ {
		name := base
		if i > 0 {
			name += "_" + strconv.Itoa(i)
		}
		p := filepath.Join(e.dir, name+".jpg")

		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(p)
			return "", err
		}
		if err := f.Close(); err != nil {
			os.Remove(p)
			return "", err
		}
		return p, nil
	}
	return "", fmt.Errorf("保存ファイル名を確保できませんでした: %s", base)
}
