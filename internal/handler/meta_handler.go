package handler

import (
	"net/http"

	"github.com/hitoshi/folio/internal/security"
	"github.com/hitoshi/folio/internal/site"
)

// MetaHandler はサイトメタデータのHTTPハンドラー。
type MetaHandler struct {
	profile site.Profile
}

// NewMetaHandler はMetaHandlerを生成する。
func NewMetaHandler(profile site.Profile) *MetaHandler {
	return &MetaHandler{profile: profile}
}

// GetJSONLD はサイト所有者のJSON-LD構造化データを返す。
// フロントエンドはこれをscriptタグにそのまま埋め込むため、
// エスケープ済みのJSONを返す。
// GET /api/meta/jsonld
func (h *MetaHandler) GetJSONLD(w http.ResponseWriter, r *http.Request) {
	body := security.SafeJSONMarshal(site.BuildPersonJSONLD(h.profile))

	w.Header().Set("Content-Type", "application/ld+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
