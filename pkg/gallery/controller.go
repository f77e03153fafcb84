package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/export"
)

var (
	// ErrEmptyPrompt は空白だけのプロンプトで生成しようとしたことを示します。
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrGenerationInProgress は別の生成リクエストが処理中であることを示します。
	ErrGenerationInProgress = errors.New("generation already in progress")
	// ErrImageNotFound は指定IDのレコードがギャラリーに無いことを示します。
	ErrImageNotFound = errors.New("image not found")
	// ErrExportUnavailable はエクスポート機能が構成されていないことを示します。
	ErrExportUnavailable = errors.New("export is not configured")
)

// Controller は Store・生成クライアント・エクスポートを束ねるギャラリー画面の操作窓口です。
// メモリ上の Gallery がセッション中の正であり、変更のたびに全体を保存し直します。
type Controller struct {
	store     *Store
	generator ImageGenerator
	exporter  Exporter

	mu         sync.Mutex
	images     domain.Gallery
	generating atomic.Bool
}

// NewController は依存関係を注入して Controller を初期化します。
// exporter は nil を許容します（エクスポート不可の構成）。
func NewController(store *Store, generator ImageGenerator, exporter Exporter) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	return &Controller{
		store:     store,
		generator: generator,
		exporter:  exporter,
		images:    domain.Gallery{},
	}, nil
}

// Refresh は保存済みギャラリーを読み込み直します。画面表示のたびに1回呼ぶ想定なのだ。
func (c *Controller) Refresh(ctx context.Context) domain.Gallery {
	loaded := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = loaded
	return c.images.Clone()
}

// Images は現在のギャラリーのコピーを返します。
func (c *Controller) Images() domain.Gallery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.Clone()
}

// Get は ID でレコードを探します。
func (c *Controller) Get(id string) (domain.WallpaperImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := domain.Find(c.images, id)
	if !ok {
		return domain.WallpaperImage{}, fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	return img, nil
}

// IsGenerating は生成リクエストが処理中かどうかを返します。
func (c *Controller) IsGenerating() bool {
	return c.generating.Load()
}

// Generate はプロンプトから画像を生成し、ギャラリーの先頭に追加して保存します。
// 同時に走らせられる生成は1つだけで、処理中の呼び出しは ErrGenerationInProgress で即座に返します。
func (c *Controller) Generate(ctx context.Context, prompt string) (*domain.WallpaperImage, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if !c.generating.CompareAndSwap(false, true) {
		return nil, ErrGenerationInProgress
	}
	defer c.generating.Store(false)

	slog.InfoContext(ctx, "壁紙の生成を開始します", "prompt_len", len(prompt))

	img, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗しました: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = domain.Insert(c.images, *img)
	c.persistLocked(ctx)

	slog.InfoContext(ctx, "壁紙をギャラリーに追加しました", "id", img.ID, "count", len(c.images))
	return img, nil
}

// Delete は ID に一致するレコードを取り除き、ギャラリー全体を保存し直します。
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, removed := domain.Remove(c.images, id)
	if !removed {
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	c.images = updated
	c.persistLocked(ctx)
	return nil
}

// Export は ID で指定したレコードの画像をメディアライブラリに保存します。
func (c *Controller) Export(ctx context.Context, id string) (*export.Asset, error) {
	img, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	return c.ExportURL(ctx, img.URL)
}

// ExportURL は URL しか分からないプレビュー画面からの保存に使います。
func (c *Controller) ExportURL(ctx context.Context, imageURL string) (*export.Asset, error) {
	if c.exporter == nil {
		return nil, ErrExportUnavailable
	}
	if strings.TrimSpace(imageURL) == "" {
		return nil, export.ErrEmptyURL
	}
	return c.exporter.Export(ctx, imageURL)
}

// persistLocked は c.mu を保持した状態で呼ぶこと。
// 保存失敗はログに残すだけで、メモリ上の状態はそのまま使い続けるのだ。
func (c *Controller) persistLocked(ctx context.Context) {
	if err := c.store.Save(ctx, c.images); err != nil {
		slog.ErrorContext(ctx, "ギャラリーの保存に失敗しました。メモリ上の状態で続行します", "error", err)
	}
}
