package model

// ChatRole はチャットメッセージの発話者種別を表す。
type ChatRole string

const (
	// ChatRoleUser はサイト訪問者の発話を示す。
	ChatRoleUser ChatRole = "user"
	// ChatRoleModel はAIモデルの応答を示す。
	ChatRoleModel ChatRole = "model"
)

// ChatMessage はクライアント側ストレージから復元されるチャット履歴の1エントリ。
// クライアント側で改竄・破損している可能性があるため、
// 利用前に必ず security.IsValidChatMessage による検証を通すこと。
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatPart はAIバックエンドへ送る発話の1パート。
type ChatPart struct {
	Text string `json:"text"`
}

// HistoryEntry はAIバックエンドAPIの会話履歴フォーマット。
// クライアントから受け取った履歴はサニタイズ・フィルタののち
// この形式に変換して送信する。
type HistoryEntry struct {
	Role  ChatRole   `json:"role"`
	Parts []ChatPart `json:"parts"`
}
