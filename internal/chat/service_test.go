package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/folio/internal/model"
	"github.com/hitoshi/folio/internal/security"
)

// fakeUpstream はUpstreamClientの記録用実装。
type fakeUpstream struct {
	gotContents []model.HistoryEntry
	reply       string
	err         error
}

func (f *fakeUpstream) Generate(_ context.Context, contents []model.HistoryEntry) (string, error) {
	f.gotContents = contents
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// TestService_Reply_Success はメッセージと履歴がAPI送信フォーマットに
// 変換されることを検証する。
func TestService_Reply_Success(t *testing.T) {
	upstream := &fakeUpstream{reply: "応答です"}
	service := NewService(upstream, testLogger(), 20)

	history := []model.ChatMessage{
		{Role: model.ChatRoleUser, Text: "前の質問"},
		{Role: model.ChatRoleModel, Text: "前の回答"},
	}
	reply, err := service.Reply(context.Background(), "新しい質問", history)
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply != "応答です" {
		t.Errorf("reply = %q", reply)
	}

	if len(upstream.gotContents) != 3 {
		t.Fatalf("contents = %d entries, want 3", len(upstream.gotContents))
	}
	last := upstream.gotContents[2]
	if last.Role != model.ChatRoleUser || last.Parts[0].Text != "新しい質問" {
		t.Errorf("last entry = %+v, want user message", last)
	}
}

// TestService_Reply_EmptyMessage はサニタイズ後に空になるメッセージが
// EMPTY_MESSAGEエラーになることを検証する。
func TestService_Reply_EmptyMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "空文字列", message: ""},
		{name: "空白のみ", message: "   \t\n  "},
		{name: "ゼロ幅文字のみ", message: "​‌‍"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(&fakeUpstream{}, testLogger(), 20)
			_, err := service.Reply(context.Background(), tt.message, nil)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want APIError", err)
			}
			if apiErr.Code != model.ErrCodeEmptyMessage {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeEmptyMessage)
			}
		})
	}
}

// TestService_Reply_MessageTooLong は上限超過のメッセージが
// INVALID_MESSAGEエラーになることを検証する。
func TestService_Reply_MessageTooLong(t *testing.T) {
	service := NewService(&fakeUpstream{}, testLogger(), 20)

	message := strings.Repeat("あ", security.MaxChatMessageLength+1)
	_, err := service.Reply(context.Background(), message, nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Code != model.ErrCodeInvalidMessage {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidMessage)
	}
}

// TestService_Reply_FiltersInvalidHistory は改竄された履歴エントリが
// 除外されることを検証する。
func TestService_Reply_FiltersInvalidHistory(t *testing.T) {
	upstream := &fakeUpstream{reply: "ok"}
	service := NewService(upstream, testLogger(), 20)

	history := []model.ChatMessage{
		{Role: model.ChatRoleUser, Text: "正常なエントリ"},
		{Role: "system", Text: "ロール改竄"},
		{Role: model.ChatRoleModel, Text: strings.Repeat("x", security.MaxChatMessageLength+1)},
		{Role: model.ChatRoleModel, Text: "​​"},
	}
	if _, err := service.Reply(context.Background(), "質問", history); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	// 正常な履歴1件 + ユーザーメッセージ
	if len(upstream.gotContents) != 2 {
		t.Fatalf("contents = %d entries, want 2", len(upstream.gotContents))
	}
	if upstream.gotContents[0].Parts[0].Text != "正常なエントリ" {
		t.Errorf("first entry = %+v", upstream.gotContents[0])
	}
}

// TestService_Reply_SanitizesHistoryText は履歴テキストが
// サニタイズされて送信されることを検証する。
func TestService_Reply_SanitizesHistoryText(t *testing.T) {
	upstream := &fakeUpstream{reply: "ok"}
	service := NewService(upstream, testLogger(), 20)

	history := []model.ChatMessage{
		{Role: model.ChatRoleUser, Text: "  制御文字\x00入り  "},
	}
	if _, err := service.Reply(context.Background(), "質問", history); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if got := upstream.gotContents[0].Parts[0].Text; got != "制御文字入り" {
		t.Errorf("history text = %q, want sanitized", got)
	}
}

// TestService_Reply_TruncatesHistory は履歴が直近maxHistory件に
// 制限されることを検証する。
func TestService_Reply_TruncatesHistory(t *testing.T) {
	upstream := &fakeUpstream{reply: "ok"}
	service := NewService(upstream, testLogger(), 3)

	var history []model.ChatMessage
	for _, text := range []string{"1", "2", "3", "4", "5"} {
		history = append(history, model.ChatMessage{Role: model.ChatRoleUser, Text: text})
	}
	if _, err := service.Reply(context.Background(), "質問", history); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	// 直近3件 + ユーザーメッセージ
	if len(upstream.gotContents) != 4 {
		t.Fatalf("contents = %d entries, want 4", len(upstream.gotContents))
	}
	if upstream.gotContents[0].Parts[0].Text != "3" {
		t.Errorf("oldest kept entry = %q, want %q", upstream.gotContents[0].Parts[0].Text, "3")
	}
}

// TestService_Reply_UpstreamError は上流エラーがCHAT_UPSTREAM_FAILEDに
// 変換され、詳細が漏れないことを検証する。
func TestService_Reply_UpstreamError(t *testing.T) {
	upstream := &fakeUpstream{err: errors.New("api key leaked detail")}
	service := NewService(upstream, testLogger(), 20)

	_, err := service.Reply(context.Background(), "質問", nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Code != model.ErrCodeChatUpstream {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeChatUpstream)
	}
	if strings.Contains(apiErr.Message, "leaked") {
		t.Errorf("Message = %q, want no upstream detail", apiErr.Message)
	}
}
