// Package handler はHTTP APIのハンドラーとルーティングを提供する。
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

	"github.com/hitoshi/folio/internal/blog"
	"github.com/hitoshi/folio/internal/middleware"
	"github.com/hitoshi/folio/internal/model"
)

// BlogServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type BlogServiceInterface interface {
	// ListPosts は公開日時の降順で記事一覧をページネーション付きで返す。
	ListPosts(ctx context.Context, offset, limit int) (*blog.ListResult, error)
	// GetPost は指定IDの記事を返す。
	GetPost(ctx context.Context, id string) (*model.Post, error)
}

// PostHandler は集約記事のHTTPハンドラー。
type PostHandler struct {
	service BlogServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service BlogServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// --- レスポンス型 ---

// postSummaryResponse は記事一覧のサマリーレスポンス。
type postSummaryResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Summary     string     `json:"summary"`
	ImageURL    string     `json:"image_url,omitempty"`
	Author      string     `json:"author,omitempty"`
	SourceTitle string     `json:"source_title"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// postListResponse は記事一覧のレスポンス。
type postListResponse struct {
	Posts   []postSummaryResponse `json:"posts"`
	Total   int                   `json:"total"`
	HasMore bool                  `json:"has_more"`
}

// postDetailResponse は記事詳細のレスポンス。
type postDetailResponse struct {
	postSummaryResponse
	Content string `json:"content"` // サニタイズ済みHTML
}

// toPostSummaryResponse はドメインモデルをレスポンス型に変換する。
func toPostSummaryResponse(p *model.Post) postSummaryResponse {
	return postSummaryResponse{
		ID:          p.ID,
		Title:       p.Title,
		Link:        p.Link,
		Summary:     p.Summary,
		ImageURL:    p.ImageURL,
		Author:      p.Author,
		SourceTitle: p.SourceTitle,
		PublishedAt: p.PublishedAt,
	}
}

// ListPosts は記事一覧を取得する。
// GET /api/posts?offset=0&limit=20
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	offset, err := parseQueryInt(r, "offset", 0)
	if err != nil {
		handleServiceError(w, model.NewInvalidCursorError(r.URL.Query().Get("offset")))
		return
	}
	limit, err := parseQueryInt(r, "limit", 0)
	if err != nil {
		handleServiceError(w, model.NewInvalidCursorError(r.URL.Query().Get("limit")))
		return
	}

	result, err := h.service.ListPosts(r.Context(), offset, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := postListResponse{
		Posts:   make([]postSummaryResponse, 0, len(result.Posts)),
		Total:   result.Total,
		HasMore: result.HasMore,
	}
	for _, p := range result.Posts {
		resp.Posts = append(resp.Posts, toPostSummaryResponse(p))
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// GetPost は記事詳細を取得する。
// GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, postDetailResponse{
		postSummaryResponse: toPostSummaryResponse(post),
		Content:             post.ContentHTML,
	})
}

// parseQueryInt はクエリパラメータを非負整数として解釈する。
// 未指定の場合はデフォルト値を返す。
func parseQueryInt(r *http.Request, key string, defaultVal int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, errors.New("invalid query parameter")
	}
	return i, nil
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmptyMessage, model.ErrCodeInvalidMessage, model.ErrCodeInvalidCursor:
		return http.StatusBadRequest
	case model.ErrCodePostNotFound:
		return http.StatusNotFound
	case model.ErrCodeChatUpstream:
		return http.StatusBadGateway
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
