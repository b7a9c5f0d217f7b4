package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the workflow counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	MutationTransitions *prometheus.CounterVec
	DocumentsUploaded   prometheus.Counter
	DocumentUploadBytes prometheus.Histogram
	AuthAttempts        *prometheus.CounterVec
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MutationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "landrecords_mutation_transitions_total",
			Help: "Mutations moved to a status",
		}, []string{"status"}),
		DocumentsUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landrecords_documents_uploaded_total",
			Help: "Documents attached to land records",
		}),
		DocumentUploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "landrecords_document_upload_bytes",
			Help:    "Size of uploaded documents",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "landrecords_auth_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.MutationTransitions, m.DocumentsUploaded, m.DocumentUploadBytes, m.AuthAttempts)
	}
	return m
}

func (m *Metrics) IncMutationTransition(status string) {
	if m == nil {
		return
	}
	m.MutationTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveDocumentUpload(size int64) {
	if m == nil {
		return
	}
	m.DocumentsUploaded.Inc()
	m.DocumentUploadBytes.Observe(float64(size))
}

func (m *Metrics) IncAuthAttempt(outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(outcome).Inc()
}
