package export

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// RemoteFetcher は URL のスキームに応じて取得方法を切り替える Fetcher です。
//   - file://       WithLocalRoot で許可したディレクトリ配下のファイルのみ
//   - gs:// / s3:// remoteio.InputReader
//   - http(s)://    SSRF 検証の後に HTTPClient
type RemoteFetcher struct {
	httpClient HTTPClient
	reader     remoteio.InputReader
	localRoots []string
	validate   func(rawURL string) (bool, error)
}

// FetcherOption は RemoteFetcher の挙動を変更します。
type FetcherOption func(*RemoteFetcher)

// WithObjectReader は gs:// や s3:// の取得に使うリーダーを設定します。
func WithObjectReader(reader remoteio.InputReader) FetcherOption {
	return func(f *RemoteFetcher) { f.reader = reader }
}

// WithLocalRoot は file:// で読み込んでよいディレクトリを追加します。
// 1つも指定しなければ file:// はすべて拒否されます。
func WithLocalRoot(dir string) FetcherOption {
	return func(f *RemoteFetcher) {
		if dir == "" {
			return
		}
		if abs, err := filepath.Abs(dir); err == nil {
			f.localRoots = append(f.localRoots, abs)
		}
	}
}

// WithAllowPrivateNetwork はプライベートネットワーク宛ての取得を許可します。
// ローカル開発や社内ミラーを使う場合のためのものなのだ。
func WithAllowPrivateNetwork() FetcherOption {
	return func(f *RemoteFetcher) {
		f.validate = func(rawURL string) (bool, error) {
			u, err := url.ParseRequestURI(rawURL)
			if err != nil {
				return false, fmt.Errorf("URLパース失敗: %w", err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, fmt.Errorf("不許可スキーム: %s", u.Scheme)
			}
			return true, nil
		}
	}
}

// NewRemoteFetcher は依存関係を注入して RemoteFetcher を初期化します。
func NewRemoteFetcher(httpClient HTTPClient, opts ...FetcherOption) (*RemoteFetcher, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	f := &RemoteFetcher{
		httpClient: httpClient,
		validate:   IsSafeURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch は rawURL の内容を取得します。
func (f *RemoteFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("URLパース失敗: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		p, err := f.localPath(u.Path)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(p)
	case "gs", "s3":
		if f.reader == nil {
			return nil, fmt.Errorf("%s:// の取得にはリモートリーダーの設定が必要です", u.Scheme)
		}
		rc, err := f.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	if safe, err := f.validate(rawURL); err != nil || !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}
	return f.httpClient.FetchBytes(ctx, rawURL)
}

// localPath は file:// のパスが許可ディレクトリ配下にあるか確認するのだ。
func (f *RemoteFetcher) localPath(uriPath string) (string, error) {
	p, err := filepath.Abs(filepath.FromSlash(uriPath))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	for _, root := range f.localRoots {
		if r, err := filepath.EvalSymlinks(root); err == nil {
			root = r
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "." {
			return p, nil
		}
	}
	return "", fmt.Errorf("許可されていないローカルパスです: %s", uriPath)
}
