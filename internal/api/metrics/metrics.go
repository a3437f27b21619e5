// Package metrics defines and registers all custom Prometheus metrics for the
// onboarding API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// and exposed on /metrics together with the HTTP metrics of echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "onboarding"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts credential operations.
// Labels:
//   - action: "register", "login", "logout", "forgot_password", "reset_password",
//     "update_password" or "verify_email"
//   - outcome: "success" or "failure"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication operations, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// SessionRejectionsTotal counts requests turned away by the session gate.
// Label:
//   - reason: "missing", "invalid", "expired", "user_gone", "password_changed", "inactive"
var SessionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rejections_total",
		Help:      "Total number of requests rejected by the session gate, by reason.",
	},
	[]string{"reason"},
)

// ── Email metrics ─────────────────────────────────────────────────────────────

// EmailsTotal counts email deliveries.
// Labels:
//   - template: the template name (e.g. "password-reset")
//   - result: "sent", "failed" or "dropped" (queue full)
var EmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Total number of emails handled, by template and result.",
	},
	[]string{"template", "result"},
)

// MailQueueDepth tracks the number of emails waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of emails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EmailSendDuration measures how long a single delivery takes.
// Label:
//   - template: the template name
var EmailSendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "email_send_duration_seconds",
		Help:      "Duration of email rendering and delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"template"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// OnboardingsCompletedTotal counts users finishing the onboarding wizard.
// Label:
//   - company_size: the declared company size bucket (e.g. "11-50")
var OnboardingsCompletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "onboardings_completed_total",
		Help:      "Total number of completed onboardings, by company size.",
	},
	[]string{"company_size"},
)

// PhotoUploadsTotal counts profile photo uploads.
// Label:
//   - outcome: "success" or "failure"
var PhotoUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photo_uploads_total",
		Help:      "Total number of profile photo uploads, by outcome.",
	},
	[]string{"outcome"},
)

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
