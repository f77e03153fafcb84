package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/kvstore"
)

// DefaultStorageKey はギャラリー全体を保存する既定のキーです。
const DefaultStorageKey = "@wallpaper_gallery"

// Store は Gallery を単一のキーに JSON 配列として永続化します。
// 並び順や件数上限は呼び出し側の責務で、Store は渡された順序のまま保存します。
type Store struct {
	backend Backend
	key     string
}

// NewStore は backend と保存キーを指定して Store を初期化します。
func NewStore(backend Backend, key string) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if key == "" {
		key = DefaultStorageKey
	}
	return &Store{backend: backend, key: key}, nil
}

// Key は保存に使うキーを返します。
func (s *Store) Key() string { return s.key }

// Load は保存済みのギャラリーを読み込みます。
// キーが無い、値が空、JSON 配列として読めない場合は空の Gallery を返し、エラーにはしません。
// 要素単位で壊れているレコードは捨て、残りを保存順のまま返すのだ。
func (s *Store) Load(ctx context.Context) domain.Gallery {
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			slog.WarnContext(ctx, "ギャラリーの読み込みに失敗しました。空として扱います", "key", s.key, "error", err)
		}
		return domain.Gallery{}
	}
	if len(data) == 0 {
		return domain.Gallery{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.WarnContext(ctx, "保存データが壊れているためギャラリーを空として扱います", "key", s.key, "error", err)
		return domain.Gallery{}
	}

	g := make(domain.Gallery, 0, len(raw))
	for i, item := range raw {
		var img domain.WallpaperImage
		if err := json.Unmarshal(item, &img); err != nil {
			slog.WarnContext(ctx, "読み込めないレコードをスキップしました", "index", i, "error", err)
			continue
		}
		if err := img.Validate(); err != nil {
			slog.WarnContext(ctx, "不正なレコードをスキップしました", "index", i, "id", img.ID, "error", err)
			continue
		}
		g = append(g, img)
	}

	if len(g) > domain.MaxGallerySize {
		slog.WarnContext(ctx, "保存件数が上限を超えているため切り詰めます", "count", len(g), "limit", domain.MaxGallerySize)
		g = g[:domain.MaxGallerySize]
	}
	return g
}

// Save はギャラリー全体をシリアライズし、以前の値を置き換えます。
// 呼び出し側はベストエフォートとして扱い、失敗はログに残すだけでよいのだ。
func (s *Store) Save(ctx context.Context, g domain.Gallery) error {
	if g == nil {
		g = domain.Gallery{}
	}
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("ギャラリーのシリアライズに失敗しました: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("ギャラリーの保存に失敗しました (key: %s): %w", s.key, err)
	}
	return nil
}
