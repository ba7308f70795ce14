package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger はヘルスチェックが必要とするデータベース接続のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Healthz はデータベース接続を確認してサービスの状態を返す。
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("ヘルスチェックに失敗しました",
			slog.String("error", err.Error()),
		)
		writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
