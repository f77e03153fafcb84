package generator

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/wallpaper-kit/pkg/domain"
)

const DefaultImagenModel = "imagen-4.0-generate-001"

// ImagenGenerator は Imagen の GenerateImages を使う生成クライアントです。
type ImagenGenerator struct {
	models      ImagenModels
	sink        AssetSink
	model       string
	aspectRatio string
	now         func() time.Time
}

// NewImagenGenerator は ImagenGenerator を初期化します。
func NewImagenGenerator(models ImagenModels, sink AssetSink, model, aspectRatio string) (*ImagenGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("models is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if model == "" {
		model = DefaultImagenModel
	}
	if aspectRatio == "" {
		aspectRatio = DefaultAspectRatio
	}
	return &ImagenGenerator{
		models:      models,
		sink:        sink,
		model:       model,
		aspectRatio: aspectRatio,
		now:         time.Now,
	}, nil
}

func (g *ImagenGenerator) Generate(ctx context.Context, prompt string) (*domain.WallpaperImage, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    g.aspectRatio,
		OutputMIMEType: "image/jpeg",
	}
	resp, err := g.models.GenerateImages(ctx, g.model, prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0] == nil {
		return nil, ErrNoImage
	}

	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("%w: %s", ErrBlocked, generated.RAIFilteredReason)
		}
		return nil, ErrNoImage
	}
	return storeImage(ctx, g.sink, prompt, generated.Image.ImageBytes, generated.Image.MIMEType, g.now())
}
