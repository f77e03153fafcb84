package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// S3ReadAPI は s3.Client のうち読み出しに必要な部分です。
type S3ReadAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Reader は s3://bucket/key を開く remoteio.InputReader です。
// 認証付きクライアントで読むので、非公開バケットの生成画像もそのまま取得できるのだ。
type S3Reader struct {
	client S3ReadAPI
}

var _ remoteio.InputReader = (*S3Reader)(nil)

// NewS3Reader は S3Reader を初期化します。
func NewS3Reader(client S3ReadAPI) (*S3Reader, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	return &S3Reader{client: client}, nil
}

// Open はオブジェクトの本文を返します。呼び出し側で Close すること。
func (r *S3Reader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseObjectURI(uri)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("オブジェクトキーがありません: %s", uri)
	}
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("S3からの取得に失敗しました (%s): %w", uri, err)
	}
	return out.Body, nil
}

// List は uri 配下のオブジェクトを s3:// URI として fn に渡します。
func (r *S3Reader) List(ctx context.Context, uri string, fn func(string) error) error {
	bucket, prefix, err := ParseObjectURI(uri)
	if err != nil {
		return err
	}
	p := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("S3の一覧取得に失敗しました (%s): %w", uri, err)
		}
		for _, obj := range page.Contents {
			if err := fn(ObjectURI(bucket, aws.ToString(obj.Key))); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseObjectURI は s3://bucket/key をバケットとキーに分解します。
func ParseObjectURI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("URIパース失敗: %w", err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("s3:// 以外のURIは読めません: %s", uri)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("バケット名がありません: %s", uri)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}
