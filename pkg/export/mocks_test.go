package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
)

// --- Mocks ---

type mockPermission struct {
	status       Status
	requested    Status
	err          error
	requestCalls int
}

func (m *mockPermission) Status(ctx context.Context) (Status, error) {
	return m.status, m.err
}

func (m *mockPermission) Request(ctx context.Context) (Status, error) {
	m.requestCalls++
	return m.requested, m.err
}

type mockFetcher struct {
	data  []byte
	err   error
	calls int
}

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	m.calls++
	return m.data, m.err
}

type mockLibrary struct {
	err       error
	lastPath  string
	lastBytes []byte
}

func (m *mockLibrary) CreateAsset(ctx context.Context, localPath string) (*Asset, error) {
	m.lastPath = localPath
	if m.err != nil {
		return nil, m.err
	}
	return &Asset{ID: "asset-1", URI: "file:///library/asset-1.jpg"}, nil
}

type mockHTTPClient struct {
	data    []byte
	err     error
	lastURL string
	calls   int
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	m.lastURL = url
	return m.data, m.err
}

type mockReader struct {
	content string
	lastURI string
}

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	m.lastURI = uri
	return io.NopCloser(strings.NewReader(m.content)), nil
}

func (m *mockReader) List(ctx context.Context, uri string, fn func(string) error) error {
	return fn(uri)
}

type mockAsker struct {
	answer bool
	calls  int
}

func (m *mockAsker) Ask(ctx context.Context, question string) (bool, error) {
	m.calls++
	return m.answer, nil
}

// pngBytes はテスト用の小さなPNG画像を作るのだ。
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}
