package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

var (
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "birthday",
		Name:      "registrations_total",
		Help:      "Registration attempts by result.",
	}, []string{"result"})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "birthday",
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	PasswordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "birthday",
		Name:      "password_resets_total",
		Help:      "Password reset attempts by result.",
	}, []string{"result"})

	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "birthday",
		Name:      "messages_sent_total",
		Help:      "Message send attempts by result.",
	}, []string{"result"})
)

// Handler serves the default prometheus registry
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
