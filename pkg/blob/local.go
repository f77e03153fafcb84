package blob

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Local はディレクトリ配下にファイルとして保存する Writer です。
type Local struct {
	dir string
}

// NewLocal はディレクトリを絶対パスに解決して Local を返します。
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("保存ディレクトリの作成に失敗しました: %w", err)
	}
	return &Local{dir: abs}, nil
}

// Put はファイルを書き込み、file:// URI を返します。
func (l *Local) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", err
	}
	return FileURI(path), nil
}

// resolve はキーが保存ディレクトリの外を指していないか確認するのだ。
func (l *Local) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("不正なキーです: %s", key)
	}
	return path, nil
}

// FileURI は絶対パスを file:// URI に変換します。
func FileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
