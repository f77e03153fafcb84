package generator

import (
	"context"
	"net/http"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"google.golang.org/genai"

	"github.com/shouni/wallpaper-kit/pkg/blob"
)

// HTTPClient は、リクエストを実行してレスポンスボディを返すためのインターフェースです。
type HTTPClient interface {
	DoRequest(req *http.Request) ([]byte, error)
}

var _ HTTPClient = (httpkit.ClientInterface)(nil)

// PartsGenerator は Gemini のマルチモーダル生成を呼び出します。
type PartsGenerator interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// ImagenModels は Imagen の画像生成 API です。*genai.Models がこれを満たします。
type ImagenModels interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

var _ ImagenModels = (*genai.Models)(nil)

// AssetSink は生成された画像のバイト列を保存し、参照用の URI を返します。
type AssetSink = blob.Writer
