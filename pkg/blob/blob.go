// Package blob は生成画像やエクスポート画像の保存先（ローカルディレクトリ / S3）を抽象化します。
package blob

import "context"

// Writer はバイト列をキーで保存し、参照用の URI を返します。
type Writer interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
