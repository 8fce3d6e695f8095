package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRequestsTotal counts handled requests by route, method and status
var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "usersapi_http_requests_total",
		Help: "Total number of HTTP requests handled",
	},
	[]string{"path", "method", "status"},
)

// HTTPRequestDuration records request latency by route and method
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "usersapi_http_request_duration_seconds",
		Help:    "Latency in seconds to handle HTTP requests",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"path", "method"},
)

// User store metrics
var (
	UsersStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "usersapi_users_stored",
			Help: "Number of user records currently held in memory",
		},
	)

	UserMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usersapi_user_mutations_total",
			Help: "Total number of user store mutations by operation",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
	prometheus.MustRegister(UsersStored, UserMutations)
}
