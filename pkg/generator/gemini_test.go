package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: インライン画像を保存してURIをURLにするのだ", func(t *testing.T) {
		ai := &mockAIClient{resp: imageResponse("image/png", []byte("png-data"))}
		sink := &mockSink{}
		g, err := NewGeminiGenerator(ai, sink, "", "")
		require.NoError(t, err)
		g.now = fixedNow

		img, err := g.Generate(ctx, "ずんだもん、走る")
		require.NoError(t, err)

		assert.Equal(t, DefaultGeminiModel, ai.lastModel)
		require.Len(t, ai.lastParts, 1)
		assert.Equal(t, "ずんだもん、走る", ai.lastParts[0].Text)
		assert.Equal(t, DefaultAspectRatio, ai.lastOpts.AspectRatio)

		assert.Equal(t, "generated/1718000000123.png", sink.lastKey)
		assert.Equal(t, "image/png", sink.lastContentType)
		assert.Equal(t, []byte("png-data"), sink.lastData)
		assert.Equal(t, "file:///assets/generated/1718000000123.png", img.URL)
		assert.Equal(t, "1718000000123", img.ID)
	})

	t.Run("通信エラーはリクエスト失敗なのだ", func(t *testing.T) {
		g, _ := NewGeminiGenerator(&mockAIClient{err: errors.New("quota")}, &mockSink{}, "m", "1:1")
		_, err := g.Generate(ctx, "p")
		assert.ErrorIs(t, err, ErrRequestFailed)
	})

	t.Run("保存に失敗したらエラーなのだ", func(t *testing.T) {
		sinkErr := errors.New("disk full")
		g, _ := NewGeminiGenerator(&mockAIClient{resp: imageResponse("image/png", []byte("x"))}, &mockSink{err: sinkErr}, "", "")
		_, err := g.Generate(ctx, "p")
		assert.ErrorIs(t, err, sinkErr)
		assert.ErrorIs(t, err, ErrAssetStoreFailed)
		assert.True(t, IsNoResult(err))
	})
}

func TestParseInlineImage(t *testing.T) {
	t.Run("正常系", func(t *testing.T) {
		data, mimeType, err := parseInlineImage(imageResponse("image/jpeg", []byte("jpg")))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", mimeType)
		assert.Equal(t, []byte("jpg"), data)
	})

	tests := []struct {
		name    string
		resp    *gemini.Response
		wantErr error
	}{
		{"nilレスポンス", nil, ErrMalformedResponse},
		{"候補なし", &gemini.Response{RawResponse: &genai.GenerateContentResponse{}}, ErrNoImage},
		{
			"テキストのみ",
			&gemini.Response{RawResponse: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "just text"}}}}},
			}},
			ErrNoImage,
		},
		{
			"安全性による停止",
			&gemini.Response{RawResponse: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			ErrBlocked,
		},
		{
			"プロンプトのブロック",
			&gemini.Response{RawResponse: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			}},
			ErrBlocked,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseInlineImage(tt.resp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
