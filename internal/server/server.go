package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/export"
)

// Gallery は HTTP API から操作するギャラリーです。*gallery.Controller がこれを満たします。
type Gallery interface {
	Images() domain.Gallery
	Get(id string) (domain.WallpaperImage, error)
	IsGenerating() bool
	Generate(ctx context.Context, prompt string) (*domain.WallpaperImage, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id string) (*export.Asset, error)
}

const requestIDHeader = "X-Request-ID"

// NewRouter はギャラリー API のルーティングを組み立てます。
func NewRouter(g Gallery) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestID())

	h := &handler{gallery: g}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/wallpapers", h.list)
		api.POST("/wallpapers", h.generate)
		api.GET("/wallpapers/:id", h.get)
		api.DELETE("/wallpapers/:id", h.delete)
		api.POST("/wallpapers/:id/export", h.export)
	}
	return router
}

// Run は ctx がキャンセルされるまで HTTP サーバーを動かし、終了時にグレースフルシャットダウンします。
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // 生成の完了待ちを含む
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP サーバーを起動します", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("HTTP サーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// requestID はリクエストごとに ID を払い出し、レスポンスヘッダーに載せるのだ。
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
