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
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordKeyUpsert(providerID string)
	RecordKeyDelete(providerID string)
	RecordCryptoFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	keyUpserts     *prometheus.CounterVec
	keyDeletes     *prometheus.CounterVec
	cryptoFailures prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waffle_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "waffle_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		keyUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waffle_api_key_upserts_total",
			Help: "プロバイダー別のAPIキー保存・更新の合計数",
		}, []string{"provider"}),
		keyDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waffle_api_key_deletes_total",
			Help: "プロバイダー別のAPIキー削除の合計数",
		}, []string{"provider"}),
		cryptoFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waffle_crypto_failures_total",
			Help: "保存済み暗号文の復号失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.keyUpserts,
		c.keyDeletes,
		c.cryptoFailures,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordKeyUpsert はAPIキーの保存・更新を記録する。
func (c *Collector) RecordKeyUpsert(providerID string) {
	c.keyUpserts.WithLabelValues(providerID).Inc()
}

// RecordKeyDelete はAPIキーの削除を記録する。
func (c *Collector) RecordKeyDelete(providerID string) {
	c.keyDeletes.WithLabelValues(providerID).Inc()
}

// RecordCryptoFailure は保存済み暗号文の復号失敗を記録する。
func (c *Collector) RecordCryptoFailure() {
	c.cryptoFailures.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
