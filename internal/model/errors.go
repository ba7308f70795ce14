// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, chat, blog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeEmptyMessage   = "EMPTY_MESSAGE"
	ErrCodeChatUpstream   = "CHAT_UPSTREAM_FAILED"
	ErrCodeInvalidCursor  = "INVALID_CURSOR"
	ErrCodePostNotFound   = "POST_NOT_FOUND"
	ErrCodeRateLimited    = "RATE_LIMITED"
)

// NewInvalidMessageError は不正なチャットメッセージのエラーを生成する。
func NewInvalidMessageError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMessage,
		Message:  fmt.Sprintf("メッセージの形式が不正です: %s", reason),
		Category: "validation",
		Action:   "メッセージの内容を確認して再度お試しください。",
	}
}

// NewEmptyMessageError は空メッセージのエラーを生成する。
func NewEmptyMessageError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyMessage,
		Message:  "メッセージが空です。",
		Category: "validation",
		Action:   "1文字以上のメッセージを入力してください。",
	}
}

// NewChatUpstreamError はAIバックエンド呼び出し失敗のエラーを生成する。
// 上流の詳細はログのみに記録し、レスポンスには含めない。
func NewChatUpstreamError() *APIError {
	return &APIError{
		Code:     ErrCodeChatUpstream,
		Message:  "AIアシスタントへの接続に失敗しました。",
		Category: "chat",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidCursorError は無効なページネーションカーソルのエラーを生成する。
func NewInvalidCursorError(cursor string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCursor,
		Message:  fmt.Sprintf("無効なカーソルです: %s", cursor),
		Category: "validation",
		Action:   "カーソルを指定せずに先頭から取得し直してください。",
	}
}

// NewPostNotFoundError は記事未検出のエラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", postID),
		Category: "blog",
		Action:   "記事IDを確認してください。",
	}
}
