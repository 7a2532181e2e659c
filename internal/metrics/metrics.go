package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the shopping list service.
// Every method is safe to call on a nil *Metrics.
type Metrics struct {
	UsersRegistered  prometheus.Counter
	Logins           *prometheus.CounterVec
	ListsCreated     prometheus.Counter
	ListsCopied      prometheus.Counter
	ItemsAdded       prometheus.Counter
	ListTransitions  *prometheus.CounterVec
	LiveSubscribers  prometheus.Gauge
	OperationLatency *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "mercando_users_registered_total",
			Help: "Total number of users registered",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mercando_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		ListsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "mercando_lists_created_total",
			Help: "Total number of shopping lists created",
		}),
		ListsCopied: f.NewCounter(prometheus.CounterOpts{
			Name: "mercando_lists_copied_total",
			Help: "Total number of shopping lists created by copying another",
		}),
		ItemsAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "mercando_items_added_total",
			Help: "Total number of items added to lists",
		}),
		ListTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mercando_list_transitions_total",
			Help: "List lifecycle transitions by action (trash, restore, delete)",
		}, []string{"action"}),
		LiveSubscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "mercando_live_subscribers",
			Help: "Number of connected live feed clients",
		}),
		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mercando_operation_duration_seconds",
			Help:    "Duration of service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mercando_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) IncrementUsersRegistered() {
	if m == nil {
		return
	}
	m.UsersRegistered.Inc()
}

// RecordLogin counts a login attempt as "success" or "failure".
func (m *Metrics) RecordLogin(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementListsCreated() {
	if m == nil {
		return
	}
	m.ListsCreated.Inc()
}

func (m *Metrics) IncrementListsCopied() {
	if m == nil {
		return
	}
	m.ListsCopied.Inc()
}

func (m *Metrics) IncrementItemsAdded() {
	if m == nil {
		return
	}
	m.ItemsAdded.Inc()
}

// RecordTransition counts n lists moved by action.
func (m *Metrics) RecordTransition(action string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ListTransitions.WithLabelValues(action).Add(float64(n))
}

func (m *Metrics) LiveSubscriberConnected() {
	if m == nil {
		return
	}
	m.LiveSubscribers.Inc()
}

func (m *Metrics) LiveSubscriberDisconnected() {
	if m == nil {
		return
	}
	m.LiveSubscribers.Dec()
}

// ObserveOperation records the duration of a service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordHTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, statusClass(status)).Inc()
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
