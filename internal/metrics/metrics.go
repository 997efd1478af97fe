// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はドキュメント生成とキャッシュのメトリクスを収集する。
type Collector struct {
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	generated    *prometheus.CounterVec
	generateTime prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmstxt_cache_hits_total",
			Help: "キャッシュヒットの合計数（キー別）",
		}, []string{"key"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmstxt_cache_misses_total",
			Help: "キャッシュミスの合計数（キー別）",
		}, []string{"key"}),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmstxt_documents_generated_total",
			Help: "生成されたドキュメントの合計数（種別ごと）",
		}, []string{"doc"}),
		generateTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "llmstxt_generation_seconds",
			Help:    "ドキュメント生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.generated,
		c.generateTime,
	)

	return c
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(key string) {
	c.cacheHits.WithLabelValues(key).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(key string) {
	c.cacheMisses.WithLabelValues(key).Inc()
}

// RecordGeneration はドキュメント生成の完了とレイテンシを記録する。
func (c *Collector) RecordGeneration(doc string, duration time.Duration) {
	c.generated.WithLabelValues(doc).Inc()
	c.generateTime.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
