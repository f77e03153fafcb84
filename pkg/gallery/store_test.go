package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/kvstore"
)

func sampleImage(i int) domain.WallpaperImage {
	return domain.NewWallpaperImage(fmt.Sprintf("prompt %d", i), fmt.Sprintf("https://x/%d.png", i), time.UnixMilli(int64(1718000000000+i)))
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("保存した順序のまま読み込めるのだ", func(t *testing.T) {
		s, err := NewStore(kvstore.NewMemory(), "")
		require.NoError(t, err)
		assert.Equal(t, DefaultStorageKey, s.Key())

		g := domain.Gallery{sampleImage(3), sampleImage(2), sampleImage(1)}
		require.NoError(t, s.Save(ctx, g))

		assert.Equal(t, g, s.Load(ctx))
	})

	t.Run("上限の20件も順序を保って往復するのだ", func(t *testing.T) {
		s, _ := NewStore(kvstore.NewMemory(), "")

		g := make(domain.Gallery, 0, domain.MaxGallerySize)
		for i := domain.MaxGallerySize; i > 0; i-- {
			g = append(g, sampleImage(i))
		}
		require.NoError(t, s.Save(ctx, g))

		loaded := s.Load(ctx)
		require.Len(t, loaded, domain.MaxGallerySize)
		assert.Equal(t, g, loaded)
		assert.Equal(t, "prompt 20", loaded[0].Prompt)
		assert.Equal(t, "prompt 1", loaded[domain.MaxGallerySize-1].Prompt)
	})

	t.Run("一度も保存していなければ空なのだ", func(t *testing.T) {
		s, _ := NewStore(kvstore.NewMemory(), "")
		g := s.Load(ctx)
		assert.NotNil(t, g)
		assert.Empty(t, g)
	})

	t.Run("空のギャラリーは [] として保存するのだ", func(t *testing.T) {
		backend := kvstore.NewMemory()
		s, _ := NewStore(backend, "k")
		require.NoError(t, s.Save(ctx, nil))

		raw, err := backend.Get(ctx, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})

	t.Run("保存フォーマットのフィールド名を維持するのだ", func(t *testing.T) {
		backend := kvstore.NewMemory()
		s, _ := NewStore(backend, "")
		img := domain.WallpaperImage{ID: "1", URL: "https://x/y.png", Prompt: "p", Timestamp: "2024-06-10T06:13:20.000Z"}
		require.NoError(t, s.Save(ctx, domain.Gallery{img}))

		raw, _ := backend.Get(ctx, DefaultStorageKey)
		assert.JSONEq(t, `[{"id":"1","url":"https://x/y.png","prompt":"p","timestamp":"2024-06-10T06:13:20.000Z"}]`, string(raw))
	})
}

func TestStore_LoadCorrupted(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		wantIDs []string
	}{
		{"JSONとして読めない", `{not json`, nil},
		{"配列ではない", `{"id":"1"}`, nil},
		{"空文字列", ``, nil},
		{
			"壊れた要素だけを捨てる",
			`[{"id":"2","url":"https://x/2.png","prompt":"a","timestamp":"2024-06-10T06:13:20.002Z"},
			  {"id":"","url":"https://x/1.png","prompt":"b","timestamp":"2024-06-10T06:13:20.001Z"},
			  42,
			  {"id":"0","url":"https://x/0.png","prompt":"c","timestamp":"yesterday"},
			  {"id":"9","url":"https://x/9.png","prompt":"d","timestamp":"2024-06-10T06:13:20.000Z"}]`,
			[]string{"2", "9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := kvstore.NewMemory()
			require.NoError(t, backend.Set(ctx, DefaultStorageKey, []byte(tt.payload)))
			s, _ := NewStore(backend, "")

			g := s.Load(ctx)
			assert.NotNil(t, g)
			var ids []string
			for _, img := range g {
				ids = append(ids, img.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("読み込みエラーは空として扱うのだ", func(t *testing.T) {
		backend := newMockBackend()
		backend.getErr = errBoom
		s, _ := NewStore(backend, "")
		assert.Empty(t, s.Load(ctx))
	})

	t.Run("上限を超える保存データは先頭20件に切り詰めるのだ", func(t *testing.T) {
		var g domain.Gallery
		for i := 30; i > 0; i-- {
			g = append(g, sampleImage(i))
		}
		data, err := json.Marshal(g)
		require.NoError(t, err)

		backend := kvstore.NewMemory()
		require.NoError(t, backend.Set(ctx, DefaultStorageKey, data))
		s, _ := NewStore(backend, "")

		loaded := s.Load(ctx)
		require.Len(t, loaded, domain.MaxGallerySize)
		assert.Equal(t, g[0].ID, loaded[0].ID)
		assert.Equal(t, g[domain.MaxGallerySize-1].ID, loaded[domain.MaxGallerySize-1].ID)
	})
}

func TestStore_SaveError(t *testing.T) {
	backend := newMockBackend()
	backend.setErr = errBoom
	s, _ := NewStore(backend, "")

	err := s.Save(context.Background(), domain.Gallery{sampleImage(1)})
	assert.ErrorIs(t, err, errBoom)
}

func TestNewStore(t *testing.T) {
	_, err := NewStore(nil, "")
	assert.Error(t, err)
}
