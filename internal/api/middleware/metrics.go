package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// unmatchedRoute метка для запросов, не попавших ни в один маршрут
const unmatchedRoute = "unmatched"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Metrics записывает число и длительность запросов по шаблону маршрута
func Metrics(m HTTPMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.ObserveHTTP(r.Method, routeTemplate(r), rec.status, time.Since(start))
		})
	}
}

// routeTemplate возвращает шаблон маршрута, чтобы id не попадали в метки
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tpl
}
