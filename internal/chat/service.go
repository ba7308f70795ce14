package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/folio/internal/model"
	"github.com/hitoshi/folio/internal/security"
)

// UpstreamClient はAIバックエンド呼び出しのインターフェース。
type UpstreamClient interface {
	// Generate は会話履歴を送信してAIモデルの応答テキストを取得する。
	Generate(ctx context.Context, contents []model.HistoryEntry) (string, error)
}

// Service はチャットプロキシのユースケースを実装する。
// クライアント側ストレージから復元された履歴は改竄されている可能性があるため、
// 検証・サニタイズ・件数制限を通してからAIバックエンドへ送信する。
type Service struct {
	client     UpstreamClient
	logger     *slog.Logger
	maxHistory int
}

// NewService はServiceの新しいインスタンスを生成する。
// maxHistoryが0以下の場合はデフォルト値20を使用する。
func NewService(client UpstreamClient, logger *slog.Logger, maxHistory int) *Service {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Service{
		client:     client,
		logger:     logger,
		maxHistory: maxHistory,
	}
}

// Reply はユーザーメッセージと会話履歴からAIモデルの応答を取得する。
// メッセージはサニタイズ後に空なら EmptyMessage、上限超過なら InvalidMessage を返す。
// 履歴の不正エントリは黙って捨てる（クライアント側破損はユーザー起因ではないため）。
func (s *Service) Reply(ctx context.Context, message string, history []model.ChatMessage) (string, error) {
	sanitized := security.SanitizeInput(message)
	if sanitized == "" {
		return "", model.NewEmptyMessageError()
	}

	userMessage := model.ChatMessage{Role: model.ChatRoleUser, Text: sanitized}
	if !security.IsValidChatMessage(&userMessage) {
		return "", model.NewInvalidMessageError(
			fmt.Sprintf("メッセージは%d文字以内で入力してください", security.MaxChatMessageLength),
		)
	}

	contents := s.buildContents(history, userMessage)

	reply, err := s.client.Generate(ctx, contents)
	if err != nil {
		s.logger.Error("AIバックエンドからの応答取得に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("history_count", len(history)),
		)
		return "", model.NewChatUpstreamError()
	}

	return reply, nil
}

// buildContents は履歴を検証・サニタイズしてAPI送信フォーマットに変換する。
// 不正エントリとサニタイズ後に空になったエントリは除外し、
// 直近maxHistory件に制限したうえで末尾にユーザーメッセージを追加する。
func (s *Service) buildContents(history []model.ChatMessage, userMessage model.ChatMessage) []model.HistoryEntry {
	var entries []model.HistoryEntry
	dropped := 0
	for i := range history {
		msg := history[i]
		if !security.IsValidChatMessage(&msg) {
			dropped++
			continue
		}
		text := security.SanitizeInput(msg.Text)
		if text == "" {
			dropped++
			continue
		}
		entries = append(entries, model.HistoryEntry{
			Role:  msg.Role,
			Parts: []model.ChatPart{{Text: text}},
		})
	}

	if dropped > 0 {
		s.logger.Warn("不正な履歴エントリを除外しました",
			slog.Int("dropped", dropped),
			slog.Int("total", len(history)),
		)
	}

	if len(entries) > s.maxHistory {
		entries = entries[len(entries)-s.maxHistory:]
	}

	return append(entries, model.HistoryEntry{
		Role:  userMessage.Role,
		Parts: []model.ChatPart{{Text: userMessage.Text}},
	})
}
