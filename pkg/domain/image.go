package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shouni/wallpaper-kit/pkg/utils"
)

// WallpaperImage は生成された壁紙1枚分のレコードです。
// JSON のフィールド名は永続化フォーマットそのものなので変更しないこと。
type WallpaperImage struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Prompt    string `json:"prompt"`
	Timestamp string `json:"timestamp"`
}

// NewWallpaperImage は、生成時刻から ID とタイムスタンプを割り当てたレコードを作ります。
func NewWallpaperImage(prompt, url string, now time.Time) WallpaperImage {
	return WallpaperImage{
		ID:        utils.MillisID(now),
		URL:       url,
		Prompt:    prompt,
		Timestamp: utils.FormatTimestamp(now),
	}
}

// Validate は、保存データから復元したレコードが使える形か検証します。
func (w WallpaperImage) Validate() error {
	if w.ID == "" {
		return errors.New("id is required")
	}
	if w.URL == "" {
		return errors.New("url is required")
	}
	if _, err := utils.ParseTimestamp(w.Timestamp); err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", w.Timestamp, err)
	}
	return nil
}

// CreatedAt はタイムスタンプを time.Time として返すのだ。
func (w WallpaperImage) CreatedAt() (time.Time, error) {
	return utils.ParseTimestamp(w.Timestamp)
}
