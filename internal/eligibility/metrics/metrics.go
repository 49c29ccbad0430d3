// Package metrics registers the Prometheus instrumentation for the
// eligibility calculator on controller-runtime's default metrics
// registry, so a single /metrics endpoint serves both the HTTP API and
// the campaign-config CRD controller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eligibility_requests_total",
		Help: "Total number of get_eligibility_status requests handled, by outcome category.",
	}, []string{"category"})

	campaignEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eligibility_campaign_evaluations_total",
		Help: "Total number of campaigns evaluated, by campaign and resulting status.",
	}, []string{"campaign_id", "status"})

	evaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eligibility_evaluation_duration_seconds",
		Help:    "Duration of a full get_eligibility_status evaluation.",
		Buckets: prometheus.DefBuckets,
	})

	configRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eligibility_config_refresh_total",
		Help: "Total number of campaign configuration refresh attempts, by source and outcome.",
	}, []string{"source", "outcome"})
)

func init() {
	ctrlmetrics.Registry.MustRegister(requestsTotal, campaignEvaluationsTotal, evaluationDuration, configRefreshTotal)
}

// RecordRequest increments the request counter for the given outcome
// category ("ok", "invalid_token", "config_invalid").
func RecordRequest(category string) {
	requestsTotal.WithLabelValues(category).Inc()
}

// RecordCampaignEvaluation records one campaign's resulting status.
func RecordCampaignEvaluation(campaignID, status string) {
	campaignEvaluationsTotal.WithLabelValues(campaignID, status).Inc()
}

// ObserveEvaluationDuration records the wall-clock duration of a full
// evaluation, in seconds.
func ObserveEvaluationDuration(seconds float64) {
	evaluationDuration.Observe(seconds)
}

// RecordConfigRefresh records one configuration refresh attempt from the
// given source ("mysql", "oci", "crd") and outcome ("ok", "error").
func RecordConfigRefresh(source, outcome string) {
	configRefreshTotal.WithLabelValues(source, outcome).Inc()
}
