// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ovinmanager"

// HTTPRequestsTotal counts API requests.
// Labels:
//   - route: the gin route pattern (e.g. "/sheep/:id")
//   - status: the response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of API requests, by route and status.",
	},
	[]string{"route", "status"},
)

// HTTPRequestDuration measures request latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route"},
)

// RecordsWrittenTotal counts records saved by the workflows.
// Label:
//   - table: the store table (e.g. "sheep", "production")
var RecordsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_written_total",
		Help:      "Total number of records written, by table.",
	},
	[]string{"table"},
)

// AnalysesTotal counts image analysis calls.
// Label:
//   - result: "ok", "failed", "rejected" or "busy"
var AnalysesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Total number of image analyses, by result.",
	},
	[]string{"result"},
)

// BackupsTotal counts exports, imports and archives.
// Labels:
//   - kind: "export", "import" or "archive"
//   - result: "ok" or "error"
var BackupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backups_total",
		Help:      "Total number of backup operations, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ImportedRowsTotal counts rows restored from backup documents.
var ImportedRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imported_rows_total",
		Help:      "Total number of rows written by backup imports, by table.",
	},
	[]string{"table"},
)

// MessagesSentTotal counts outbound WhatsApp messages.
// Labels:
//   - type: "text" or "document"
//   - result: "ok" or "error"
var MessagesSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of WhatsApp messages sent, by type and result.",
	},
	[]string{"type", "result"},
)

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
