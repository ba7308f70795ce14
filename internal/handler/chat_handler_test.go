package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/folio/internal/middleware"
	"github.com/hitoshi/folio/internal/model"
)

// fakeChatService はChatServiceInterfaceの記録用実装。
type fakeChatService struct {
	gotMessage string
	gotHistory []model.ChatMessage
	reply      string
	err        error
}

func (f *fakeChatService) Reply(_ context.Context, message string, history []model.ChatMessage) (string, error) {
	f.gotMessage = message
	f.gotHistory = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeChatRecorder はChatRecorderの記録用実装。
type fakeChatRecorder struct {
	outcomes  []string
	latencies []time.Duration
}

func (f *fakeChatRecorder) RecordChatRequest(outcome string) {
	f.outcomes = append(f.outcomes, outcome)
}

func (f *fakeChatRecorder) RecordChatLatency(duration time.Duration) {
	f.latencies = append(f.latencies, duration)
}

// TestChatHandler_Chat はチャットリクエストの正常応答を検証する。
func TestChatHandler_Chat(t *testing.T) {
	service := &fakeChatService{reply: "応答です"}
	recorder := &fakeChatRecorder{}
	h := NewChatHandler(service, recorder, 30*time.Second)

	body := `{"message":"質問です","history":[{"role":"user","text":"前の質問"},{"role":"model","text":"前の回答"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Chat(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp chatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Reply != "応答です" {
		t.Errorf("reply = %q", resp.Reply)
	}
	if service.gotMessage != "質問です" {
		t.Errorf("message = %q", service.gotMessage)
	}
	if len(service.gotHistory) != 2 {
		t.Errorf("history = %d entries, want 2", len(service.gotHistory))
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "success" {
		t.Errorf("outcomes = %v, want [success]", recorder.outcomes)
	}
	if len(recorder.latencies) != 1 {
		t.Errorf("latencies = %v, want 1 entry", recorder.latencies)
	}
}

// TestChatHandler_Chat_InvalidJSON は壊れたボディが400になることを検証する。
func TestChatHandler_Chat_InvalidJSON(t *testing.T) {
	recorder := &fakeChatRecorder{}
	h := NewChatHandler(&fakeChatService{}, recorder, 30*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	h.Chat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "validation_error" {
		t.Errorf("outcomes = %v, want [validation_error]", recorder.outcomes)
	}
}

// TestChatHandler_Chat_ValidationError は検証エラーが400で返り、
// validation_errorとして記録されることを検証する。
func TestChatHandler_Chat_ValidationError(t *testing.T) {
	service := &fakeChatService{err: model.NewEmptyMessageError()}
	recorder := &fakeChatRecorder{}
	h := NewChatHandler(service, recorder, 30*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":""}`))
	w := httptest.NewRecorder()
	h.Chat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeEmptyMessage {
		t.Errorf("Code = %q, want %q", body.Code, model.ErrCodeEmptyMessage)
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "validation_error" {
		t.Errorf("outcomes = %v, want [validation_error]", recorder.outcomes)
	}
}

// TestChatHandler_Chat_UpstreamError は上流エラーが502で返り、
// upstream_errorとして記録されることを検証する。
func TestChatHandler_Chat_UpstreamError(t *testing.T) {
	service := &fakeChatService{err: model.NewChatUpstreamError()}
	recorder := &fakeChatRecorder{}
	h := NewChatHandler(service, recorder, 30*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"質問"}`))
	w := httptest.NewRecorder()
	h.Chat(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "upstream_error" {
		t.Errorf("outcomes = %v, want [upstream_error]", recorder.outcomes)
	}
}
