package blogsync

import (
	"fmt"
	"time"

	"github.com/hitoshi/folio/internal/model"
)

// FetchResult はHTTPステータスコードに基づくフェッチ結果の分類。
type FetchResult int

const (
	// FetchResultOK はフェッチ成功（200）。
	FetchResultOK FetchResult = iota
	// FetchResultNotModified はコンテンツ未変更（304）。
	FetchResultNotModified
	// FetchResultStop はフェッチ停止が必要なステータス（404/410/401/403）。
	FetchResultStop
	// FetchResultBackoff はバックオフが必要なステータス（429/5xx）。
	FetchResultBackoff
	// FetchResultUnknown は未知のステータスコード。
	FetchResultUnknown
)

const (
	// initialBackoff は指数バックオフの初回遅延（1時間）。
	initialBackoff = time.Hour
	// maxBackoff は指数バックオフの最大遅延（24時間）。
	maxBackoff = 24 * time.Hour
	// parseFailureThreshold はパース失敗によるフェッチ停止の閾値。
	parseFailureThreshold = 10
)

// ClassifyHTTPStatus はHTTPステータスコードをフェッチ結果に分類する。
func ClassifyHTTPStatus(statusCode int) FetchResult {
	switch {
	case statusCode == 200:
		return FetchResultOK
	case statusCode == 304:
		return FetchResultNotModified
	case statusCode == 404 || statusCode == 410:
		return FetchResultStop
	case statusCode == 401 || statusCode == 403:
		return FetchResultStop
	case statusCode == 429:
		return FetchResultBackoff
	case statusCode >= 500:
		return FetchResultBackoff
	default:
		return FetchResultUnknown
	}
}

// CalculateBackoff は連続エラー回数に基づいて指数バックオフ遅延を計算する。
// 初回1時間、2倍ずつ増加、最大24時間。
func CalculateBackoff(consecutiveErrors int) time.Duration {
	delay := initialBackoff
	for i := 0; i < consecutiveErrors; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// ApplyStop はソースのフェッチを停止する。
// 消滅したブログや認証が必要になったソースを対象から外す。
func ApplyStop(state *model.SourceState, reason string) {
	state.Stopped = true
	state.ErrorMessage = reason
	state.UpdatedAt = time.Now()
}

// ApplyBackoff はソースにバックオフ戦略を適用する。
// 連続エラー回数をインクリメントし、指数バックオフでnext_fetch_atを設定する。
func ApplyBackoff(state *model.SourceState, reason string) {
	state.ConsecutiveErrors++
	state.ErrorMessage = reason
	delay := CalculateBackoff(state.ConsecutiveErrors - 1)
	state.NextFetchAt = time.Now().Add(delay)
	state.UpdatedAt = time.Now()
}

// ApplySuccess はフェッチ成功時にソースの状態をリセットする。
// 連続エラー回数を0にリセットし、エラーメッセージをクリアする。
// intervalに基づいてnext_fetch_atを設定する。
func ApplySuccess(state *model.SourceState, interval time.Duration) {
	state.ConsecutiveErrors = 0
	state.ErrorMessage = ""
	state.NextFetchAt = time.Now().Add(interval)
	state.UpdatedAt = time.Now()
}

// ApplyParseFailure はパース失敗時にソースの連続エラー回数をインクリメントする。
// 閾値に達した場合はフェッチを停止する。
func ApplyParseFailure(state *model.SourceState, reason string) {
	state.ConsecutiveErrors++
	state.ErrorMessage = fmt.Sprintf("パース失敗 (%d回連続): %s", state.ConsecutiveErrors, reason)
	state.UpdatedAt = time.Now()

	if state.ConsecutiveErrors >= parseFailureThreshold {
		state.Stopped = true
		state.ErrorMessage = fmt.Sprintf("パース失敗が%d回連続したためフェッチを停止しました: %s", state.ConsecutiveErrors, reason)
	}
}
