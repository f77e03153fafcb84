package generator

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// --- Mocks ---

type mockHTTPClient struct {
	body     []byte
	err      error
	lastReq  *http.Request
	lastBody []byte
	calls    int
}

func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) {
	m.calls++
	m.lastReq = req
	if req.Body != nil {
		m.lastBody, _ = io.ReadAll(req.Body)
	}
	return m.body, m.err
}

type mockAIClient struct {
	resp      *gemini.Response
	err       error
	lastModel string
	lastParts []*genai.Part
	lastOpts  gemini.GenerateOptions
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.lastModel = model
	m.lastParts = parts
	m.lastOpts = opts
	return m.resp, m.err
}

type mockImagen struct {
	resp       *genai.GenerateImagesResponse
	err        error
	lastPrompt string
	lastConfig *genai.GenerateImagesConfig
}

func (m *mockImagen) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.lastPrompt = prompt
	m.lastConfig = config
	return m.resp, m.err
}

type mockSink struct {
	err             error
	lastKey         string
	lastData        []byte
	lastContentType string
}

func (m *mockSink) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.lastKey = key
	m.lastData = data
	m.lastContentType = contentType
	if m.err != nil {
		return "", m.err
	}
	return "file:///assets/" + key, nil
}

var fixedNow = func() time.Time { return time.UnixMilli(1718000000123) }

func imageResponse(mimeType string, data []byte) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "here you go"},
						{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
					},
				},
			}},
		},
	}
}
