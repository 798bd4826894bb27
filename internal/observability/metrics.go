package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec

	examAttemptsTotal    *prometheus.CounterVec
	examGradeSeconds     prometheus.Histogram
	paymentVerifications *prometheus.CounterVec
	uploadsTotal         *prometheus.CounterVec
	uploadRejectedTotal  *prometheus.CounterVec
	uploadLatencySeconds prometheus.Histogram
	bulkImportRowsTotal  *prometheus.CounterVec
	cacheRequestsTotal   *prometheus.CounterVec
	auditEventsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_api_requests_total",
			Help: "API requests served, by audience scope (public, member, admin).",
		}, []string{"scope", "method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"scope", "method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_api_errors_total",
			Help: "Error responses returned by the API.",
		}, []string{"scope", "method", "route", "status"})

		examAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_attempts_total",
			Help: "Exam attempt lifecycle events by outcome.",
		}, []string{"outcome"})

		examGradeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "exam_grade_seconds",
			Help:    "Time spent grading and persisting a submitted attempt.",
			Buckets: prometheus.DefBuckets,
		})

		paymentVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verification decisions by resulting status.",
		}, []string{"status"})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Stored uploads by kind and detected MIME family.",
		}, []string{"kind", "mime"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_rejected_total",
			Help: "Rejected uploads by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Latency of validating and storing uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		})

		bulkImportRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camp_bulk_import_rows_total",
			Help: "Rows processed by camp bulk registration imports.",
		}, []string{"result"})

		cacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by cache name and result.",
		}, []string{"cache", "result"})

		auditEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Audit entries recorded by action.",
		}, []string{"action"})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			examAttemptsTotal, examGradeSeconds, paymentVerifications,
			uploadsTotal, uploadRejectedTotal, uploadLatencySeconds,
			bulkImportRowsTotal, cacheRequestsTotal, auditEventsTotal,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the error response counter.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ExamAttempts exposes the attempt outcome counter.
func ExamAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return examAttemptsTotal
}

// ExamGradeLatency exposes the grading latency histogram.
func ExamGradeLatency() prometheus.Histogram {
	RegisterMetrics()
	return examGradeSeconds
}

// PaymentVerifications exposes the verification decision counter.
func PaymentVerifications() *prometheus.CounterVec {
	RegisterMetrics()
	return paymentVerifications
}

// Uploads exposes the stored upload counter.
func Uploads() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// UploadRejected exposes the rejected upload counter.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// BulkImportRows exposes the bulk import row counter.
func BulkImportRows() *prometheus.CounterVec {
	RegisterMetrics()
	return bulkImportRowsTotal
}

// CacheRequests exposes the cache hit/miss counter.
func CacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheRequestsTotal
}

// AuditEvents exposes the audit entry counter.
func AuditEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEventsTotal
}
