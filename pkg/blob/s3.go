package blob

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options は S3 互換ストレージへの接続設定です。
type S3Options struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	Bucket          string
	Prefix          string
	// PresignTTL が正の値なら Put は署名付き GET URL を返します。
	PresignTTL time.Duration
	// ObjectURI が true なら Put は常に s3://bucket/key を返します。
	// 永続化するレコードに期限切れの URL を残さないためのものです。
	ObjectURI bool
}

// S3PutAPI は s3.Client のうち Put に必要な部分です。
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PresignAPI は s3.PresignClient のうち GET の署名に必要な部分です。
type S3PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3 はバケットにオブジェクトとして保存する Writer です。
type S3 struct {
	client    S3PutAPI
	presigner S3PresignAPI
	opts      S3Options
}

// NewS3Client は設定から s3.Client を組み立てます。
// アクセスキーが空の場合は SDK 既定の認証情報チェーンを使います。
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

// NewS3 は S3 Writer を初期化します。presigner は nil を許容します。
func NewS3(client S3PutAPI, presigner S3PresignAPI, opts S3Options) (*S3, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &S3{client: client, presigner: presigner, opts: opts}, nil
}

// Put はオブジェクトをアップロードし、参照用 URL を返します。
func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := s.objectKey(key)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("S3へのアップロードに失敗しました (%s/%s): %w", s.opts.Bucket, objectKey, err)
	}

	if s.opts.ObjectURI {
		return ObjectURI(s.opts.Bucket, objectKey), nil
	}
	if s.opts.PresignTTL > 0 && s.presigner != nil {
		out, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.opts.Bucket),
			Key:    aws.String(objectKey),
		}, s3.WithPresignExpires(s.opts.PresignTTL))
		if err != nil {
			return "", fmt.Errorf("署名付きURLの発行に失敗しました: %w", err)
		}
		return out.URL, nil
	}
	return s.objectURL(objectKey), nil
}

func (s *S3) objectKey(key string) string {
	if s.opts.Prefix == "" {
		return key
	}
	return path.Join(s.opts.Prefix, key)
}

func (s *S3) objectURL(objectKey string) string {
	if s.opts.Endpoint == "" {
		return ObjectURI(s.opts.Bucket, objectKey)
	}
	segments := strings.Split(objectKey, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.opts.Endpoint, "/"), s.opts.Bucket, strings.Join(segments, "/"))
}

// ObjectURI は s3://bucket/key 形式の URI を作ります。
func ObjectURI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}
