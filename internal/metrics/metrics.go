package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LogMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "log_messages_total",
		Help: "Total number of log messages by level.",
	}, []string{"level"})

	Deposits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deposits_total",
		Help: "Total number of committed deposits.",
	})

	Withdrawals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "withdrawals_total",
		Help: "Total number of committed withdrawals.",
	})

	Purchases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_total",
		Help: "Total number of committed purchases.",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notification dispatch outcomes.",
	}, []string{"outcome"})

	RegisteredUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_registered_users",
		Help: "Number of registered users.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
