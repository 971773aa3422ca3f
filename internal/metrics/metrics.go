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
// ミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(route string, duration time.Duration)
	RecordSignIn(result string)
	RecordUsernameClaim(result string)
	RecordIntervalsSaved(count int)
	RecordCleanupDeleted(target string, count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	signIns        *prometheus.CounterVec
	usernameClaims *prometheus.CounterVec
	intervalsSaved prometheus.Counter
	cleanupDeleted *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ignitecall_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ignitecall_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ignitecall_sign_ins_total",
			Help: "結果別のサインイン数",
		}, []string{"result"}),
		usernameClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ignitecall_username_claims_total",
			Help: "結果別のユーザー名確保数",
		}, []string{"result"}),
		intervalsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ignitecall_intervals_saved_total",
			Help: "保存された曜日別時間帯の合計数",
		}),
		cleanupDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ignitecall_cleanup_deleted_total",
			Help: "クリーンアップで削除された行数",
		}, []string{"target"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.signIns,
		c.usernameClaims,
		c.intervalsSaved,
		c.cleanupDeleted,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はルートパターン別の処理時間を記録する。
func (c *Collector) RecordRequestLatency(route string, duration time.Duration) {
	c.requestLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordSignIn はサインイン結果を記録する。
func (c *Collector) RecordSignIn(result string) {
	c.signIns.WithLabelValues(result).Inc()
}

// RecordUsernameClaim はユーザー名確保の結果を記録する。
func (c *Collector) RecordUsernameClaim(result string) {
	c.usernameClaims.WithLabelValues(result).Inc()
}

// RecordIntervalsSaved は保存された時間帯数を記録する。
func (c *Collector) RecordIntervalsSaved(count int) {
	c.intervalsSaved.Add(float64(count))
}

// RecordCleanupDeleted はクリーンアップ対象別の削除件数を記録する。
func (c *Collector) RecordCleanupDeleted(target string, count int64) {
	c.cleanupDeleted.WithLabelValues(target).Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
