// Package kvstore は、ギャラリーや権限状態を保存するキーバリューバックエンド群を提供します。
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound はキーが存在しないことを示します。
var ErrNotFound = errors.New("kvstore: key not found")

// Store はすべてのバックエンドが満たすインターフェースです。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
