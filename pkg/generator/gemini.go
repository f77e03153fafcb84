package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/wallpaper-kit/pkg/domain"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash-image"
	// DefaultAspectRatio は縦長の壁紙向けです。
	DefaultAspectRatio = "9:16"
)

// wallpaperSystemPrompt はモデルに壁紙向けの構図を指示するのだ。
const wallpaperSystemPrompt = "You generate phone wallpapers. Produce a single full-bleed portrait image without text, borders or watermarks."

// GeminiGenerator は Gemini のネイティブ画像生成を使う生成クライアントです。
// 画像はバイト列で返るため、AssetSink に保存したURIをレコードの URL にします。
type GeminiGenerator struct {
	aiClient    PartsGenerator
	sink        AssetSink
	model       string
	aspectRatio string
	now         func() time.Time
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(aiClient PartsGenerator, sink AssetSink, model, aspectRatio string) (*GeminiGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if aspectRatio == "" {
		aspectRatio = DefaultAspectRatio
	}
	return &GeminiGenerator{
		aiClient:    aiClient,
		sink:        sink,
		model:       model,
		aspectRatio: aspectRatio,
		now:         time.Now,
	}, nil
}

// Generate はプロンプトから1枚生成して保存するのだ。
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*domain.WallpaperImage, error) {
	parts := []*genai.Part{{Text: prompt}}
	opts := gemini.GenerateOptions{
		AspectRatio:  g.aspectRatio,
		SystemPrompt: wallpaperSystemPrompt,
	}

	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	data, mimeType, err := parseInlineImage(resp)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Geminiから画像を受け取りました", "model", g.model, "mime_type", mimeType, "bytes", len(data))
	return storeImage(ctx, g.sink, prompt, data, mimeType, g.now())
}

// parseInlineImage は最初の候補から最初のインライン画像を取り出すのだ。
func parseInlineImage(resp *gemini.Response) ([]byte, string, error) {
	if resp == nil || resp.RawResponse == nil {
		return nil, "", fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	raw := resp.RawResponse
	if raw.PromptFeedback != nil && raw.PromptFeedback.BlockReason != "" {
		return nil, "", fmt.Errorf("%w: %s", ErrBlocked, raw.PromptFeedback.BlockReason)
	}
	if len(raw.Candidates) == 0 {
		return nil, "", ErrNoImage
	}

	candidate := raw.Candidates[0]
	if isBlockedFinish(candidate.FinishReason) {
		return nil, "", fmt.Errorf("%w: %s", ErrBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return nil, "", ErrNoImage
	}
	for _, part := range candidate.Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType, nil
		}
	}
	return nil, "", ErrNoImage
}

func isBlockedFinish(r genai.FinishReason) bool {
	switch r {
	case genai.FinishReasonSafety,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonBlocklist,
		genai.FinishReasonSPII,
		genai.FinishReasonImageSafety:
		return true
	}
	return false
}
