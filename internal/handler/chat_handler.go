package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hitoshi/folio/internal/model"
)

// ChatServiceInterface はチャットハンドラーが必要とするサービスインターフェース。
type ChatServiceInterface interface {
	// Reply はユーザーメッセージと会話履歴からAIモデルの応答を取得する。
	Reply(ctx context.Context, message string, history []model.ChatMessage) (string, error)
}

// ChatRecorder はチャットリクエストのメトリクス記録インターフェース。
type ChatRecorder interface {
	RecordChatRequest(outcome string)
	RecordChatLatency(duration time.Duration)
}

// ChatHandler はAIアシスタントチャットのHTTPハンドラー。
type ChatHandler struct {
	service  ChatServiceInterface
	recorder ChatRecorder
	timeout  time.Duration
}

// NewChatHandler はChatHandlerを生成する。
// timeoutが0以下の場合はデフォルトの30秒を使用する。
func NewChatHandler(service ChatServiceInterface, recorder ChatRecorder, timeout time.Duration) *ChatHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatHandler{
		service:  service,
		recorder: recorder,
		timeout:  timeout,
	}
}

// chatRequest はチャットリクエストのボディ。
// historyはクライアント側ストレージから復元された値で、改竄されている可能性がある。
type chatRequest struct {
	Message string              `json:"message"`
	History []model.ChatMessage `json:"history"`
}

// chatResponse はチャット応答のレスポンス。
type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat はAIアシスタントへのメッセージを処理する。
// POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recorder.RecordChatRequest("validation_error")
		handleServiceError(w, model.NewInvalidMessageError("リクエストボディをJSONとして解釈できません"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reply, err := h.service.Reply(ctx, req.Message, req.History)
	if err != nil {
		h.recorder.RecordChatRequest(chatOutcome(err))
		handleServiceError(w, err)
		return
	}

	h.recorder.RecordChatRequest("success")
	h.recorder.RecordChatLatency(time.Since(start))

	writeJSONResponse(w, http.StatusOK, chatResponse{Reply: reply})
}

// chatOutcome はエラーからメトリクス用の結果ラベルを決める。
func chatOutcome(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Category == "validation" {
		return "validation_error"
	}
	return "upstream_error"
}
