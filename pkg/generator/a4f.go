package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/wallpaper-kit/pkg/domain"
)

const (
	DefaultA4FEndpoint = "https://api.a4f.co/v1/images/generations"
	DefaultA4FModel    = "provider-4/imagen-4"
	// DefaultImageSize はスマートフォンの縦長壁紙に合わせたサイズです。
	DefaultImageSize = "1024x1792"
)

type a4fRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type a4fResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// A4FGenerator は OpenAI 互換の画像生成エンドポイントを呼び出す生成クライアントです。
type A4FGenerator struct {
	httpClient HTTPClient
	apiKey     string
	endpoint   string
	model      string
	size       string
	now        func() time.Time
}

// A4FOption は A4FGenerator の既定値を変更します。
type A4FOption func(*A4FGenerator)

func WithEndpoint(endpoint string) A4FOption {
	return func(g *A4FGenerator) {
		if endpoint != "" {
			g.endpoint = endpoint
		}
	}
}

func WithModel(model string) A4FOption {
	return func(g *A4FGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

func WithSize(size string) A4FOption {
	return func(g *A4FGenerator) {
		if size != "" {
			g.size = size
		}
	}
}

// NewA4FGenerator は依存関係を注入して A4FGenerator を初期化します。
func NewA4FGenerator(httpClient HTTPClient, apiKey string, opts ...A4FOption) (*A4FGenerator, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	g := &A4FGenerator{
		httpClient: httpClient,
		apiKey:     apiKey,
		endpoint:   DefaultA4FEndpoint,
		model:      DefaultA4FModel,
		size:       DefaultImageSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate はプロンプトを1回だけ送信し、返ってきた画像URLでレコードを作ります。
func (g *A4FGenerator) Generate(ctx context.Context, prompt string) (*domain.WallpaperImage, error) {
	body, err := json.Marshal(a4fRequest{Model: g.model, Prompt: prompt, N: 1, Size: g.size})
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	respBody, err := g.httpClient.DoRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	var resp a4fResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, resp.Error.Message)
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].URL) == "" {
		return nil, ErrNoImage
	}

	img := domain.NewWallpaperImage(prompt, resp.Data[0].URL, g.now())
	slog.DebugContext(ctx, "A4Fから画像URLを受け取りました", "model", g.model, "id", img.ID)
	return &img, nil
}
