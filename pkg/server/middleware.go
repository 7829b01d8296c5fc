package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/budgetbubbles/pkg/observability"
)

// observe reports each request to the server hooks and logs it with a
// request-scoped logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := chi.RouteContext(r.Context()).RoutePattern()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, route)

		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ctx := log.WithContext(r.Context(), logger)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d)
	})
}

func logFrom(r *http.Request) *log.Logger {
	return log.FromContext(r.Context())
}
