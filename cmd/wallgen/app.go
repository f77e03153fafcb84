package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"google.golang.org/genai"

	"github.com/shouni/wallpaper-kit/internal/config"
	"github.com/shouni/wallpaper-kit/pkg/blob"
	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/export"
	"github.com/shouni/wallpaper-kit/pkg/gallery"
	"github.com/shouni/wallpaper-kit/pkg/generator"
	"github.com/shouni/wallpaper-kit/pkg/kvstore"
)

// app は1回のコマンド実行で使う依存関係一式です。
type app struct {
	cfg        *config.Config
	kv         kvstore.Store
	store      *gallery.Store
	permission export.Permission
	stored     *export.StoredPermission
	closers    []func() error
}

// newApp はギャラリーの保存先と権限管理を組み立てます。生成・エクスポートは必要なときに作ります。
func newApp(ctx context.Context, cfg *config.Config, asker export.Asker) (*app, error) {
	a := &app{cfg: cfg}

	kv, err := a.openBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.kv = kv

	if a.store, err = gallery.NewStore(kv, cfg.GalleryKey); err != nil {
		a.Close()
		return nil, err
	}

	switch cfg.MediaPermission {
	case "granted":
		a.permission = export.StaticPermission(export.Granted)
	case "denied":
		a.permission = export.StaticPermission(export.Denied)
	default:
		if a.stored, err = export.NewStoredPermission(kv, export.DefaultPermissionKey, asker); err != nil {
			a.Close()
			return nil, err
		}
		a.permission = a.stored
	}
	return a, nil
}

func (a *app) openBackend(ctx context.Context) (kvstore.Store, error) {
	cfg := a.cfg
	switch cfg.GalleryBackend {
	case "memory":
		slog.WarnContext(ctx, "メモリバックエンドはプロセス終了時に内容が失われます")
		return kvstore.NewMemory(), nil
	case "redis":
		client, err := kvstore.NewRedisClient(ctx, kvstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return kvstore.NewRedis(client, cfg.RedisPrefix)
	case "sqlite":
		db, err := kvstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case "postgres":
		db, err := kvstore.OpenPostgres(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	default:
		return kvstore.NewFile(cfg.GalleryDataDir)
	}
}

// controller は生成クライアントとエクスポートを組み立て、保存済みギャラリーを読み込んだ Controller を返します。
// withGenerator が false の場合は API キーを要求せず、生成は常に失敗します。
func (a *app) controller(ctx context.Context, keys *config.KeyStore, withGenerator bool) (*gallery.Controller, error) {
	var gen gallery.ImageGenerator = unavailableGenerator{}
	if withGenerator {
		g, err := a.generator(ctx, keys)
		if err != nil {
			return nil, err
		}
		gen = g
	}

	exp, err := a.exporter(ctx)
	if err != nil {
		return nil, err
	}

	c, err := gallery.NewController(a.store, gen, exp)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return c, nil
}

func (a *app) generator(ctx context.Context, keys *config.KeyStore) (gallery.ImageGenerator, error) {
	cfg := a.cfg
	apiKey, err := cfg.ResolveAPIKey(keys)
	if err != nil {
		return nil, fmt.Errorf("%w (環境変数または `wallgen key set %s` で設定してください)", err, cfg.ProviderKeyName())
	}

	switch cfg.GeneratorProvider {
	case "gemini":
		sink, err := a.assetSink(ctx)
		if err != nil {
			return nil, err
		}
		client, err := gemini.NewClient(ctx, gemini.Config{APIKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("Gemini クライアントの初期化に失敗しました: %w", err)
		}
		return generator.NewGeminiGenerator(client, sink, cfg.GeminiImageModel, cfg.AspectRatio)
	case "imagen":
		sink, err := a.assetSink(ctx)
		if err != nil {
			return nil, err
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
		if err != nil {
			return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
		}
		return generator.NewImagenGenerator(client.Models, sink, cfg.ImagenModel, cfg.AspectRatio)
	default:
		return generator.NewA4FGenerator(httpkit.New(cfg.HTTPTimeout), apiKey,
			generator.WithEndpoint(cfg.A4FEndpoint),
			generator.WithModel(cfg.A4FModel),
			generator.WithSize(cfg.ImageSize),
		)
	}
}

// assetSink はバイト列で返る生成画像の置き場所です。S3 が設定されていればバケットを使います。
func (a *app) assetSink(ctx context.Context) (blob.Writer, error) {
	if a.cfg.S3Bucket != "" {
		return a.s3Writer(ctx, a.assetSinkOptions())
	}
	return blob.NewLocal(a.cfg.AssetDir)
}

// assetSinkOptions はギャラリーに永続化される URL 用の設定です。
// 署名付き URL は期限が切れるので、常に s3://bucket/key を返させます。
func (a *app) assetSinkOptions() blob.S3Options {
	opts := a.s3Options("")
	opts.PresignTTL = 0
	opts.ObjectURI = true
	return opts
}

func (a *app) exporter(ctx context.Context) (*export.Exporter, error) {
	cfg := a.cfg

	var libWriter blob.Writer
	var err error
	if cfg.MediaLibrary == "s3" {
		libWriter, err = a.s3Writer(ctx, a.s3Options("library"))
	} else {
		libWriter, err = blob.NewLocal(cfg.MediaLibraryDir)
	}
	if err != nil {
		return nil, err
	}
	library, err := export.NewBlobLibrary(libWriter, cfg.MediaAlbum)
	if err != nil {
		return nil, err
	}

	opts := []export.FetcherOption{export.WithLocalRoot(cfg.AssetDir)}
	if cfg.S3Bucket != "" {
		client, err := blob.NewS3Client(ctx, a.s3Options(""))
		if err != nil {
			return nil, err
		}
		reader, err := blob.NewS3Reader(client)
		if err != nil {
			return nil, err
		}
		opts = append(opts, export.WithObjectReader(reader))
	}
	if cfg.AllowPrivateNetwork {
		opts = append(opts, export.WithAllowPrivateNetwork())
	}
	fetcher, err := export.NewRemoteFetcher(httpkit.New(cfg.HTTPTimeout), opts...)
	if err != nil {
		return nil, err
	}

	return export.NewExporter(a.permission, fetcher, library, cfg.DownloadDir)
}

func (a *app) s3Options(sub string) blob.S3Options {
	cfg := a.cfg
	return blob.S3Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		UsePathStyle:    cfg.S3UsePathStyle,
		Bucket:          cfg.S3Bucket,
		Prefix:          path.Join(cfg.S3Prefix, sub),
		PresignTTL:      cfg.S3PresignTTL,
	}
}

func (a *app) s3Writer(ctx context.Context, opts blob.S3Options) (blob.Writer, error) {
	client, err := blob.NewS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}
	return blob.NewS3(client, s3.NewPresignClient(client), opts)
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// unavailableGenerator は生成を伴わないコマンドで Controller を作るためのものなのだ。
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string) (*domain.WallpaperImage, error) {
	return nil, errGeneratorNotConfigured
}

var errGeneratorNotConfigured = errors.New("generator is not configured for this command")
