package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/export"
	"github.com/shouni/wallpaper-kit/pkg/kvstore"
)

// --- Mocks ---

// mockBackend は書き込みエラーを注入できる Backend です。
type mockBackend struct {
	*kvstore.Memory
	getErr error
	setErr error
	sets   int
}

func newMockBackend() *mockBackend {
	return &mockBackend{Memory: kvstore.NewMemory()}
}

func (m *mockBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.Memory.Get(ctx, key)
}

func (m *mockBackend) Set(ctx context.Context, key string, value []byte) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	return m.Memory.Set(ctx, key, value)
}

// mockGenerator は呼び出しごとに連番の URL を返し、block が設定されていれば解放まで待ちます。
type mockGenerator struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{}
	started chan struct{}
	now     time.Time
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (*domain.WallpaperImage, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	base := m.now
	if base.IsZero() {
		base = time.UnixMilli(1718000000000)
	}
	img := domain.NewWallpaperImage(prompt, fmt.Sprintf("https://x/%d.png", n), base.Add(time.Duration(n)*time.Millisecond))
	return &img, nil
}

type mockExporter struct {
	lastURL string
	err     error
}

func (m *mockExporter) Export(ctx context.Context, imageURL string) (*export.Asset, error) {
	m.lastURL = imageURL
	if m.err != nil {
		return nil, m.err
	}
	return &export.Asset{ID: "asset-1", URI: "file:///lib/asset-1.jpg"}, nil
}

var errBoom = errors.New("boom")
