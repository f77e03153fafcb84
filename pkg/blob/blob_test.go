package blob

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	lastInput *s3.PutObjectInput
	body      []byte
	err       error
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.lastInput = in
	if in.Body != nil {
		m.body, _ = io.ReadAll(in.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

type mockPresigner struct {
	called bool
}

func (m *mockPresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	m.called = true
	return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + aws.ToString(in.Key) + "?sig=1"}, nil
}

func TestLocal_Put(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l, err := NewLocal(dir)
	require.NoError(t, err)

	t.Run("書き込んだファイルのfile URIを返すのだ", func(t *testing.T) {
		uri, err := l.Put(ctx, "album/a.jpg", []byte("jpeg-bytes"), "image/jpeg")
		require.NoError(t, err)

		u, err := url.Parse(uri)
		require.NoError(t, err)
		assert.Equal(t, "file", u.Scheme)

		data, err := os.ReadFile(filepath.FromSlash(u.Path))
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(data))
	})

	t.Run("ディレクトリ外を指すキーは拒否するのだ", func(t *testing.T) {
		_, err := l.Put(ctx, "../outside.jpg", []byte("x"), "")
		assert.Error(t, err)
	})

	t.Run("空のキーは拒否するのだ", func(t *testing.T) {
		_, err := l.Put(ctx, "", []byte("x"), "")
		assert.Error(t, err)
	})
}

func TestS3_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("プレフィックス付きのキーでアップロードしエンドポイントURLを返すのだ", func(t *testing.T) {
		client := &mockS3{}
		w, err := NewS3(client, nil, S3Options{Endpoint: "https://s3.example.com/", Bucket: "walls", Prefix: "library"})
		require.NoError(t, err)

		uri, err := w.Put(ctx, "Wallpapers/a b.jpg", []byte("data"), "image/jpeg")
		require.NoError(t, err)

		assert.Equal(t, "library/Wallpapers/a b.jpg", aws.ToString(client.lastInput.Key))
		assert.Equal(t, "walls", aws.ToString(client.lastInput.Bucket))
		assert.Equal(t, "image/jpeg", aws.ToString(client.lastInput.ContentType))
		assert.Equal(t, "data", string(client.body))
		assert.Equal(t, "https://s3.example.com/walls/library/Wallpapers/a%20b.jpg", uri)
	})

	t.Run("エンドポイントが無ければs3スキームのURIなのだ", func(t *testing.T) {
		w, err := NewS3(&mockS3{}, nil, S3Options{Bucket: "walls"})
		require.NoError(t, err)

		uri, err := w.Put(ctx, "x.jpg", []byte("data"), "")
		require.NoError(t, err)
		assert.Equal(t, "s3://walls/x.jpg", uri)
	})

	t.Run("TTLがあれば署名付きURLを返すのだ", func(t *testing.T) {
		presigner := &mockPresigner{}
		w, err := NewS3(&mockS3{}, presigner, S3Options{Bucket: "walls", PresignTTL: time.Hour})
		require.NoError(t, err)

		uri, err := w.Put(ctx, "x.jpg", []byte("data"), "")
		require.NoError(t, err)
		assert.True(t, presigner.called)
		assert.Equal(t, "https://signed.example.com/x.jpg?sig=1", uri)
	})

	t.Run("ObjectURIならTTLがあってもs3スキームのURIなのだ", func(t *testing.T) {
		presigner := &mockPresigner{}
		w, err := NewS3(&mockS3{}, presigner, S3Options{
			Endpoint:   "http://minio:9000",
			Bucket:     "walls",
			Prefix:     "gallery",
			PresignTTL: time.Hour,
			ObjectURI:  true,
		})
		require.NoError(t, err)

		uri, err := w.Put(ctx, "generated/1.png", []byte("data"), "image/png")
		require.NoError(t, err)
		assert.False(t, presigner.called)
		assert.Equal(t, "s3://walls/gallery/generated/1.png", uri)
	})

	t.Run("アップロード失敗はエラーとして返るのだ", func(t *testing.T) {
		uploadErr := errors.New("access denied")
		w, err := NewS3(&mockS3{err: uploadErr}, nil, S3Options{Bucket: "walls"})
		require.NoError(t, err)

		_, err = w.Put(ctx, "x.jpg", []byte("data"), "")
		assert.ErrorIs(t, err, uploadErr)
	})

	t.Run("必須設定が無ければ初期化できないのだ", func(t *testing.T) {
		_, err := NewS3(nil, nil, S3Options{Bucket: "walls"})
		assert.Error(t, err)
		_, err = NewS3(&mockS3{}, nil, S3Options{})
		assert.Error(t, err)
	})
}
