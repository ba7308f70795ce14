// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやハンドラー層から利用する。
type MetricsCollector interface {
	RecordSyncSuccess(sourceURL string)
	RecordSyncFailure(sourceURL string)
	RecordPostsUpserted(count int)
	RecordChatRequest(outcome string)
	RecordChatLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	syncSuccess   prometheus.Counter
	syncFail      prometheus.Counter
	postsUpserted prometheus.Counter
	chatRequests  *prometheus.CounterVec
	chatLatency   prometheus.Histogram
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		syncSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_sync_success_total",
			Help: "ブログ同期成功の合計数",
		}),
		syncFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_sync_fail_total",
			Help: "ブログ同期失敗の合計数",
		}),
		postsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_posts_upserted_total",
			Help: "アップサートされた記事の合計数",
		}),
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_chat_requests_total",
			Help: "チャットリクエストの結果別合計数",
		}, []string{"outcome"}),
		chatLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_chat_latency_seconds",
			Help:    "チャット応答のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.syncSuccess,
		c.syncFail,
		c.postsUpserted,
		c.chatRequests,
		c.chatLatency,
		c.httpStatus,
	)

	return c
}

// RecordSyncSuccess はブログ同期成功を記録する。
func (c *Collector) RecordSyncSuccess(sourceURL string) {
	c.syncSuccess.Inc()
}

// RecordSyncFailure はブログ同期失敗を記録する。
func (c *Collector) RecordSyncFailure(sourceURL string) {
	c.syncFail.Inc()
}

// RecordPostsUpserted はアップサートされた記事数を記録する。
func (c *Collector) RecordPostsUpserted(count int) {
	c.postsUpserted.Add(float64(count))
}

// RecordChatRequest はチャットリクエストの結果を記録する。
// outcomeは success / validation_error / upstream_error のいずれか。
func (c *Collector) RecordChatRequest(outcome string) {
	c.chatRequests.WithLabelValues(outcome).Inc()
}

// RecordChatLatency はチャット応答のレイテンシを記録する。
func (c *Collector) RecordChatLatency(duration time.Duration) {
	c.chatLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
