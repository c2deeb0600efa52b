package middleware

import (
	"net/http"
	"time"
)

type requestObserver interface {
	ObserveRequest(method string, code int, took time.Duration)
}

func MetricsMiddleware(o requestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := newLogWriter(w)

			next.ServeHTTP(lw, r)

			o.ObserveRequest(r.Method, lw.status, time.Since(start))
		})
	}
}
