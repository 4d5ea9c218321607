package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// AnalysisTotal counts finished analyses by feature, provider and outcome.
	AnalysisTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vectora",
		Name:      "analysis_total",
		Help:      "Total number of analyses, labeled by feature, provider and result (ok/error).",
	}, []string{"feature", "provider", "result"})

	// AnalysisDurationSeconds 是从收到请求到得到结论（含 provider 调用）的耗时。
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vectora",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end analysis time including the provider call.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"provider"})

	ProviderHTTPErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vectora",
		Name:      "provider_http_errors_total",
		Help:      "Non-2xx responses returned by AI providers, labeled by status code.",
	}, []string{"provider", "status"})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysisTotal,
			AnalysisDurationSeconds,
			ProviderHTTPErrorsTotal,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

func ObserveAnalysis(feature, provider string, ok bool, elapsed time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	if provider == "" {
		provider = "none"
	}
	AnalysisTotal.WithLabelValues(feature, provider, result).Inc()
	AnalysisDurationSeconds.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func ObserveProviderHTTPError(provider string, status int) {
	ProviderHTTPErrorsTotal.WithLabelValues(provider, strconv.Itoa(status)).Inc()
}
