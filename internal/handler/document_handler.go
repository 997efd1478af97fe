// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/model"
)

// GeneratorService はドキュメント生成サービスのインターフェース。
// テスタビリティのためgenerator.Serviceを抽象化する。
type GeneratorService interface {
	Navigation(ctx context.Context) (string, error)
	FullContent(ctx context.Context) (string, error)
	Sitemaps(ctx context.Context) (string, error)
	CategoryDocument(ctx context.Context, categoryID int64) (string, error)
	TopicDocument(ctx context.Context, topicID int64) (string, error)
	TagDocument(ctx context.Context, name string) (string, error)
	ClearCache(ctx context.Context)
	ShouldRefresh(ctx context.Context) bool
	TouchCheckpoint(ctx context.Context)
	LastUpdateTime(ctx context.Context) time.Time
}

// DocumentHandler はllms.txtファミリーのドキュメント配信ハンドラー。
type DocumentHandler struct {
	service GeneratorService
}

// NewDocumentHandler はDocumentHandlerを生成する。
func NewDocumentHandler(service GeneratorService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Navigation はGET /llms.txtを処理する。
// 配信前に鮮度チェックポイントを評価し、コンテンツ更新が検出された
// 場合はキャッシュを破棄してから再生成する。
func (h *DocumentHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.service.ShouldRefresh(ctx) {
		h.service.ClearCache(ctx)
		h.service.TouchCheckpoint(ctx)
	}

	content, err := h.service.Navigation(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDocument(w, content)
}

// FullContent はGET /llms-full.txtを処理する。常にオンデマンド生成。
func (h *DocumentHandler) FullContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.FullContent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeDocument(w, content)
}

// Sitemaps はGET /sitemaps.txtを処理する。
func (h *DocumentHandler) Sitemaps(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Sitemaps(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeDocument(w, content)
}

// Category はGET /c/{slug}/{id}/llms.txtを処理する。
// slugは表示用で、検索にはidのみを使用する。
func (h *DocumentHandler) Category(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	content, err := h.service.CategoryDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDocument(w, content)
}

// Topic はGET /t/{slug}/{id}/llms.txtを処理する。
func (h *DocumentHandler) Topic(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	content, err := h.service.TopicDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDocument(w, content)
}

// Tag はGET /tag/{name}/llms.txtを処理する。
func (h *DocumentHandler) Tag(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.TagDocument(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeDocument(w, content)
}

// ClearCache はPOST /admin/llms/cache/clearを処理する。
// グローバルドキュメントとチェックポイントを一括で破棄する。
func (h *DocumentHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.service.ClearCache(ctx)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"last_update": h.service.LastUpdateTime(ctx).UTC().Format(time.RFC3339),
	})
}

// writeDocument はUTF-8のプレーンテキストとしてドキュメントを返す。
func writeDocument(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content)); err != nil {
		slog.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

// writeError はエラーをHTTPレスポンスに変換する。
// コンテンツ未検出は404、それ以外は500を返す。
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Category == "content" {
		status = http.StatusNotFound
	} else {
		slog.Error("document generation failed", slog.String("error", err.Error()))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	code := model.ErrCodeGenerationFailed
	if apiErr != nil {
		code = apiErr.Code
	}
	json.NewEncoder(w).Encode(map[string]string{"code": code})
}
