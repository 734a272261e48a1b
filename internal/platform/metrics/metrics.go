package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered prometheus.Counter
	LoginAttempts   *prometheus.CounterVec
	PasswordChanges prometheus.Counter
	NicknameChanges prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "micronation_users_registered_total",
			Help: "Total number of user accounts created.",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "micronation_login_attempts_total",
			Help: "Number of login attempts grouped by status.",
		}, []string{"status"}),
		PasswordChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "micronation_password_changes_total",
			Help: "Number of successful password changes.",
		}),
		NicknameChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "micronation_nickname_changes_total",
			Help: "Number of successful nickname changes.",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "micronation_http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// IncrementUsersRegistered increments the registration counter by 1.
func (m *Metrics) IncrementUsersRegistered() {
	m.UsersRegistered.Inc()
}

// IncrementLoginAttempts increments the login counter for a status.
func (m *Metrics) IncrementLoginAttempts(status string) {
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// IncrementPasswordChanges increments the password change counter by 1.
func (m *Metrics) IncrementPasswordChanges() {
	m.PasswordChanges.Inc()
}

// IncrementNicknameChanges increments the nickname change counter by 1.
func (m *Metrics) IncrementNicknameChanges() {
	m.NicknameChanges.Inc()
}

// ObserveRequestDuration records one request's latency.
func (m *Metrics) ObserveRequestDuration(method, path string, status int, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}
