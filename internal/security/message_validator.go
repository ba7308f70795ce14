package security

import (
	"unicode/utf8"

	"github.com/hitoshi/folio/internal/model"
)

// MaxChatMessageLength はチャットメッセージ本文の最大文字数（rune単位）。
// クライアント側ストレージから復元される巨大ペイロードによる
// DoSを防ぐための上限。
const MaxChatMessageLength = 30000

// IsValidChatMessage はクライアント側ストレージから読み込んだ
// チャット履歴エントリの構造とサイズを検証する。
//
// 以下をすべて満たす場合のみtrueを返す:
//   - messageがnilでない
//   - Roleが user または model のいずれか
//   - Textの文字数がMaxChatMessageLength以下
//
// この関数は形状とサイズの検証のみを行い、単独ではXSS防御にはならない。
// レンダリング時の安全性はIsSafeHref/IsSafeImageSrc/SafeJSONMarshalを
// 下流で適用することで担保する。
func IsValidChatMessage(message *model.ChatMessage) bool {
	if message == nil {
		return false
	}
	if message.Role != model.ChatRoleUser && message.Role != model.ChatRoleModel {
		return false
	}
	return utf8.RuneCountInString(message.Text) <= MaxChatMessageLength
}
