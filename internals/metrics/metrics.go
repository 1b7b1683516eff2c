package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "educenter"

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	PaymentsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "payments_recorded_total", Help: "Recorded tuition payments",
	}, []string{"payment_type"})
	SalaryRecomputations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "salary_recomputations_total", Help: "Teacher salary recomputations",
	})
	CurrencyFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "currency_rate_fallbacks_total", Help: "Exchange rate lookups answered by the fallback rate",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, PaymentsRecorded, SalaryRecomputations, CurrencyFallbacks, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
