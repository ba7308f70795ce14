// Package chat はポートフォリオサイトのAIアシスタント機能を提供する。
// AIバックエンドAPIの呼び出しと、クライアント履歴の検証・サニタイズを含む。
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/folio/internal/model"
)

const (
	// userAgent はAIバックエンド呼び出し時のUser-Agentヘッダー値。
	userAgent = "Folio/1.0 Chat Proxy"
	// retryBaseDelay はリトライの初回遅延。試行ごとに2倍になる。
	retryBaseDelay = 500 * time.Millisecond
)

// systemInstruction はAIバックエンドAPIのシステム指示フォーマット。
type systemInstruction struct {
	Parts []model.ChatPart `json:"parts"`
}

// generateRequest はAIバックエンドAPIのリクエストボディ。
type generateRequest struct {
	SystemInstruction *systemInstruction    `json:"systemInstruction,omitempty"`
	Contents          []model.HistoryEntry `json:"contents"`
}

// generateResponse はAIバックエンドAPIのレスポンスボディ。
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []model.ChatPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client はAIバックエンドAPIのクライアント。
// APIキーはヘッダーで送信し、429/5xxは指数バックオフ付きでリトライする。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	apiKey     string
	systemHint string
	maxRetries int
}

// NewClient はClientの新しいインスタンスを生成する。
// maxRetriesが負数の場合は0（リトライなし）を使用する。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint, apiKey, systemHint string, maxRetries int) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		apiKey:     apiKey,
		systemHint: systemHint,
		maxRetries: maxRetries,
	}
}

// Generate は会話履歴を送信してAIモデルの応答テキストを取得する。
// 一時的な失敗（ネットワークエラー、429、5xx）は指数バックオフでリトライし、
// リトライ上限に達した場合は最後のエラーを返す。
func (c *Client) Generate(ctx context.Context, contents []model.HistoryEntry) (string, error) {
	reqBody := generateRequest{Contents: contents}
	if c.systemHint != "" {
		reqBody.SystemInstruction = &systemInstruction{
			Parts: []model.ChatPart{{Text: c.systemHint}},
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("リクエストボディの作成に失敗しました: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			c.logger.Warn("AIバックエンドの呼び出しをリトライします",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, retryable, err := c.generateOnce(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}

	return "", lastErr
}

// generateOnce は1回分のAPI呼び出しを実行する。
// 2番目の戻り値はリトライ可能な失敗かどうかを示す。
func (c *Client) generateOnce(ctx context.Context, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("AIバックエンドAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", true, fmt.Errorf("AIバックエンドAPIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("AIバックエンドAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("AIバックエンドAPIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("AIバックエンドAPIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", false, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", false, fmt.Errorf("AIバックエンドAPIのレスポンスに応答が含まれていません")
	}

	return result.Candidates[0].Content.Parts[0].Text, false, nil
}
