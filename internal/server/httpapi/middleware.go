package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/logging"
	"github.com/dmitrijs2005/paylink/internal/server/auth"
	"github.com/gorilla/mux"
)

type contextKey string

const principalContextKey contextKey = "principal"

// callerPrincipal returns the authenticated principal, or "" for anonymous
// requests. Services treat the empty principal as AnonymousCaller.
func callerPrincipal(ctx context.Context) string {
	principal, _ := ctx.Value(principalContextKey).(string)
	return principal
}

// authMiddleware extracts the bearer token and puts the verified principal
// into the request context. A missing or invalid token is not rejected here;
// the request proceeds as anonymous and the services decide.
func authMiddleware(secretKey []byte) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if ok && token != "" {
				if principal, err := auth.PrincipalFromToken(token, secretKey); err == nil {
					ctx := context.WithValue(r.Context(), principalContextKey, principal)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// observeMiddleware records request metrics and an access log line per
// request, labeled by the mux route template so path parameters do not blow
// up cardinality.
func observeMiddleware(logger logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tmpl
				}
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(elapsed.Seconds())

			logger.Info(r.Context(), "request",
				"method", r.Method, "endpoint", endpoint,
				"status", rec.status, "duration", elapsed.String())
		})
	}
}
