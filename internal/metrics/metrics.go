// Package metrics 는 Prometheus 메트릭의 수집과 공개를 제공한다.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector 는 메트릭 수집의 인터페이스.
// 핸들러와 서비스 계층에서 이용한다.
type MetricsCollector interface {
	RecordBackendCall(endpoint string, statusCode int)
	RecordBackendLatency(endpoint string, duration time.Duration)
	RecordSearch(platform string)
	RecordDebounceSuperseded(kind string)
	RecordSessionCreated()
	RecordSessionInvalidated(reason string)
}

// Collector 는 Prometheus 메트릭을 수집하는 구현.
type Collector struct {
	backendCalls       *prometheus.CounterVec
	backendLatency     *prometheus.HistogramVec
	searches           *prometheus.CounterVec
	debounceSuperseded *prometheus.CounterVec
	sessionCreated     prometheus.Counter
	sessionInvalidated *prometheus.CounterVec
}

// NewCollector 는 새 Collector 를 생성하고, 지정된 레지스트리에 메트릭을 등록한다.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joongomoa_backend_calls_total",
			Help: "백엔드 API 호출 수 (엔드포인트, 상태 코드별)",
		}, []string{"endpoint", "status_code"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "joongomoa_backend_latency_seconds",
			Help:    "백엔드 API 호출의 레이턴시 (초)",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joongomoa_searches_total",
			Help: "검색 요청 수 (플랫폼별)",
		}, []string{"platform"}),
		debounceSuperseded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joongomoa_debounce_superseded_total",
			Help: "후속 입력에 의해 취소된 디바운스 대기 수 (종류별)",
		}, []string{"kind"}),
		sessionCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joongomoa_sessions_created_total",
			Help: "생성된 세션의 합계",
		}),
		sessionInvalidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joongomoa_sessions_invalidated_total",
			Help: "무효화된 세션의 합계 (원인별)",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.backendCalls,
		c.backendLatency,
		c.searches,
		c.debounceSuperseded,
		c.sessionCreated,
		c.sessionInvalidated,
	)

	return c
}

// RecordBackendCall 은 백엔드 호출 결과를 기록한다.
func (c *Collector) RecordBackendCall(endpoint string, statusCode int) {
	c.backendCalls.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
}

// RecordBackendLatency 는 백엔드 호출의 레이턴시를 기록한다.
func (c *Collector) RecordBackendLatency(endpoint string, duration time.Duration) {
	c.backendLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordSearch 는 검색 요청을 기록한다.
func (c *Collector) RecordSearch(platform string) {
	c.searches.WithLabelValues(platform).Inc()
}

// RecordDebounceSuperseded 는 취소된 디바운스 대기를 기록한다.
// kind 는 "autocomplete" 또는 "check_id".
func (c *Collector) RecordDebounceSuperseded(kind string) {
	c.debounceSuperseded.WithLabelValues(kind).Inc()
}

// RecordSessionCreated 는 세션 생성을 기록한다.
func (c *Collector) RecordSessionCreated() {
	c.sessionCreated.Inc()
}

// RecordSessionInvalidated 는 세션 무효화를 기록한다.
// reason 은 "logout", "expired", "unauthorized" 등.
func (c *Collector) RecordSessionInvalidated(reason string) {
	c.sessionInvalidated.WithLabelValues(reason).Inc()
}

// Handler 는 Prometheus 스크레이프용 HTTP 핸들러를 반환한다.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute 는 /metrics 엔드포인트를 제공하는 HTTP 핸들러를 반환한다.
// Prometheus 스크레이프에 대응한다.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// NopCollector 는 아무것도 기록하지 않는 MetricsCollector. 테스트용.
type NopCollector struct{}

func (NopCollector) RecordBackendCall(endpoint string, statusCode int)               {}
func (NopCollector) RecordBackendLatency(endpoint string, duration time.Duration)    {}
func (NopCollector) RecordSearch(platform string)                                    {}
func (NopCollector) RecordDebounceSuperseded(kind string)                            {}
func (NopCollector) RecordSessionCreated()                                           {}
func (NopCollector) RecordSessionInvalidated(reason string)                          {}
