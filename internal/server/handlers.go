package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/export"
	"github.com/shouni/wallpaper-kit/pkg/gallery"
	"github.com/shouni/wallpaper-kit/pkg/generator"
)

type handler struct {
	gallery Gallery
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (h *handler) list(c *gin.Context) {
	images := h.gallery.Images()
	c.JSON(http.StatusOK, gin.H{
		"items":      images,
		"count":      len(images),
		"limit":      domain.MaxGallerySize,
		"generating": h.gallery.IsGenerating(),
	})
}

func (h *handler) get(c *gin.Context) {
	img, err := h.gallery.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "wallpaper not found"})
		return
	}
	c.JSON(http.StatusOK, img)
}

func (h *handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	img, err := h.gallery.Generate(c.Request.Context(), req.Prompt)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, img)
	case errors.Is(err, gallery.ErrEmptyPrompt):
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
	case errors.Is(err, gallery.ErrGenerationInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "generation already in progress"})
	case generator.IsNoResult(err):
		h.logError(c, "壁紙を生成できませんでした", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate wallpaper"})
	default:
		h.logError(c, "壁紙の生成中にエラーが発生しました", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate wallpaper"})
	}
}

func (h *handler) delete(c *gin.Context) {
	err := h.gallery.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, gallery.ErrImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "wallpaper not found"})
	default:
		h.logError(c, "壁紙の削除に失敗しました", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete wallpaper"})
	}
}

func (h *handler) export(c *gin.Context) {
	asset, err := h.gallery.Export(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"saved": true, "asset": asset})
	case errors.Is(err, gallery.ErrImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"saved": false, "error": "wallpaper not found"})
	case errors.Is(err, export.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"saved": false, "error": "media library permission denied"})
	case errors.Is(err, gallery.ErrExportUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"saved": false, "error": "export is not configured"})
	case errors.Is(err, export.ErrDownloadFailed), errors.Is(err, export.ErrAssetCreationFailed):
		h.logError(c, "メディアライブラリへの保存に失敗しました", err)
		c.JSON(http.StatusBadGateway, gin.H{"saved": false, "error": "failed to save wallpaper"})
	default:
		h.logError(c, "エクスポート中にエラーが発生しました", err)
		c.JSON(http.StatusInternalServerError, gin.H{"saved": false, "error": "failed to save wallpaper"})
	}
}

func (h *handler) logError(c *gin.Context, msg string, err error) {
	slog.ErrorContext(c.Request.Context(), msg, "request_id", c.GetString("request_id"), "path", c.FullPath(), "error", err)
}
