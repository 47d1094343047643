package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iploc_requests_total",
		Help: "Total number of lookup requests",
	})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "iploc_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	InvalidIPTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iploc_invalid_ip_total",
		Help: "Total requests rejected by IPv4 validation",
	})
	ResolveExhaustedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iploc_resolve_exhausted_total",
		Help: "Total requests for which every upstream candidate failed",
	})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iploc_upstream_requests_total",
		Help: "Total upstream fetches by provider",
	}, []string{"provider"})
	UpstreamSuccessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iploc_upstream_success_total",
		Help: "Total upstream fetches yielding a valid location",
	}, []string{"provider"})
	UpstreamFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iploc_upstream_fail_total",
		Help: "Total upstream transport or payload failures",
	}, []string{"provider"})
	UpstreamSkipTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iploc_upstream_skip_total",
		Help: "Total upstream fetches skipped for missing credential",
	}, []string{"provider"})
	UpstreamDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iploc_upstream_duration_ms",
		Help:    "Upstream fetch duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(InvalidIPTotal)
	prometheus.MustRegister(ResolveExhaustedTotal)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamSuccessTotal)
	prometheus.MustRegister(UpstreamFailTotal)
	prometheus.MustRegister(UpstreamSkipTotal)
	prometheus.MustRegister(UpstreamDurationMs)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
