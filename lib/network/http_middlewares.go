package network

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/store/memory"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/metrics"
	"github.com/tokenvote/tokenvote/lib/network/httputils"
)

const RequestIDHeader = "X-Request-Id"

func RecoverMiddleware(logger logging.Logger, printStack bool) mux.MiddlewareFunc {
	if logger == nil {
		logger = log
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", rec)
					}
					httputils.WriteJSONError(w, err)
					logger.Error("recover a panic", "err", err)
					if printStack == true {
						debug.PrintStack()
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware tags every request with an id, echoed in the
// response and in the access log. Clients may supply their own.
func RequestIDMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if len(id) < 1 {
				id = uuid.New().String()
				r.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware records request counts, error counts and
// latencies, labeled by route template, method and status.
func MetricsMiddleware(m *metrics.APIMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if template, err := route.GetPathTemplate(); err == nil {
					endpoint = template
				}
			}
			m.ObserveRequest(endpoint, r.Method, recorder.status, time.Since(started).Seconds())
		})
	}
}

// statusRecorder keeps the handler's status code for the metric
// labels. Flush is forwarded, the event stream cannot run behind a
// writer that hides it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RateLimitMiddleware limits requests per client ip. Addresses with
// their own rate in the rule override the default; a zero limit
// disables limiting for that address.
func RateLimitMiddleware(logger logging.Logger, rule common.RateLimitRule) mux.MiddlewareFunc {
	if logger == nil {
		logger = log
	}

	store := memory.NewStore()
	defaultLimiter := limiter.New(store, rule.Default)

	byIP := map[string]*limiter.Limiter{}
	for ip, rate := range rule.ByIPAddress {
		byIP[ip] = limiter.New(memory.NewStore(), rate)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			instance := defaultLimiter
			if l, ok := byIP[host]; ok {
				instance = l
			}
			if instance.Rate.Limit < 1 { // limiting disabled
				next.ServeHTTP(w, r)
				return
			}

			context, err := instance.Get(r.Context(), host)
			if err != nil {
				httputils.WriteJSONError(w, err)
				return
			}
			if context.Reached {
				logger.Warn("rate limit reached", "ip", host)
				httputils.WriteJSON(w, http.StatusTooManyRequests, httputils.NewStatusProblem(http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
