package blogsync

import (
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/folio/internal/model"
)

// TestClassifyHTTPStatus はHTTPステータスコードの分類を検証する。
func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   FetchResult
	}{
		{name: "200は成功", status: 200, want: FetchResultOK},
		{name: "304は未変更", status: 304, want: FetchResultNotModified},
		{name: "404は停止", status: 404, want: FetchResultStop},
		{name: "410は停止", status: 410, want: FetchResultStop},
		{name: "401は停止", status: 401, want: FetchResultStop},
		{name: "403は停止", status: 403, want: FetchResultStop},
		{name: "429はバックオフ", status: 429, want: FetchResultBackoff},
		{name: "500はバックオフ", status: 500, want: FetchResultBackoff},
		{name: "503はバックオフ", status: 503, want: FetchResultBackoff},
		{name: "302は未知", status: 302, want: FetchResultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyHTTPStatus(tt.status); got != tt.want {
				t.Errorf("ClassifyHTTPStatus(%d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

// TestCalculateBackoff は指数バックオフの増加と上限を検証する。
func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		name              string
		consecutiveErrors int
		want              time.Duration
	}{
		{name: "初回は1時間", consecutiveErrors: 0, want: time.Hour},
		{name: "2回目は2時間", consecutiveErrors: 1, want: 2 * time.Hour},
		{name: "3回目は4時間", consecutiveErrors: 2, want: 4 * time.Hour},
		{name: "上限は24時間", consecutiveErrors: 10, want: 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateBackoff(tt.consecutiveErrors); got != tt.want {
				t.Errorf("CalculateBackoff(%d) = %v, want %v", tt.consecutiveErrors, got, tt.want)
			}
		})
	}
}

// TestApplyBackoff は連続エラー回数のインクリメントとnext_fetch_atの設定を検証する。
func TestApplyBackoff(t *testing.T) {
	state := &model.SourceState{SourceURL: "https://blog.example.com/rss"}

	ApplyBackoff(state, "HTTPステータス 503")

	if state.ConsecutiveErrors != 1 {
		t.Errorf("ConsecutiveErrors = %d, want 1", state.ConsecutiveErrors)
	}
	if state.ErrorMessage != "HTTPステータス 503" {
		t.Errorf("ErrorMessage = %q", state.ErrorMessage)
	}
	// 初回エラーのバックオフは1時間
	wantMin := time.Now().Add(time.Hour - time.Minute)
	if state.NextFetchAt.Before(wantMin) {
		t.Errorf("NextFetchAt = %v, want about 1 hour later", state.NextFetchAt)
	}
}

// TestApplySuccess は成功時の状態リセットを検証する。
func TestApplySuccess(t *testing.T) {
	state := &model.SourceState{
		SourceURL:         "https://blog.example.com/rss",
		ConsecutiveErrors: 3,
		ErrorMessage:      "以前のエラー",
	}

	ApplySuccess(state, 30*time.Minute)

	if state.ConsecutiveErrors != 0 {
		t.Errorf("ConsecutiveErrors = %d, want 0", state.ConsecutiveErrors)
	}
	if state.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty", state.ErrorMessage)
	}
	if state.NextFetchAt.Before(time.Now().Add(29 * time.Minute)) {
		t.Errorf("NextFetchAt = %v, want about 30 minutes later", state.NextFetchAt)
	}
}

// TestApplyStop は停止状態の設定を検証する。
func TestApplyStop(t *testing.T) {
	state := &model.SourceState{SourceURL: "https://blog.example.com/rss"}

	ApplyStop(state, "HTTPステータス 410")

	if !state.Stopped {
		t.Error("Stopped = false, want true")
	}
	if state.ErrorMessage != "HTTPステータス 410" {
		t.Errorf("ErrorMessage = %q", state.ErrorMessage)
	}
}

// TestApplyParseFailure_ThresholdStops はパース失敗が閾値に達すると
// フェッチが停止することを検証する。
func TestApplyParseFailure_ThresholdStops(t *testing.T) {
	state := &model.SourceState{SourceURL: "https://blog.example.com/rss"}

	for i := 0; i < parseFailureThreshold-1; i++ {
		ApplyParseFailure(state, "invalid xml")
		if state.Stopped {
			t.Fatalf("Stopped = true after %d failures, want threshold %d", i+1, parseFailureThreshold)
		}
	}

	ApplyParseFailure(state, "invalid xml")

	if !state.Stopped {
		t.Errorf("Stopped = false after %d failures, want true", parseFailureThreshold)
	}
	if !strings.Contains(state.ErrorMessage, "停止") {
		t.Errorf("ErrorMessage = %q, want stop message", state.ErrorMessage)
	}
}
