package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	goamiddleware "goa.design/goa/v3/middleware"

	"lavishtravels/internal/config"
	"lavishtravels/internal/logger"
)

// setupSecurityHeaders adds security headers to responses
func setupSecurityHeaders(handler http.Handler, app *config.AppConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Server", "")

		// HSTS only when served over TLS outside debug mode
		if !app.Debug && r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		handler.ServeHTTP(w, r)
	})
}

// setupCORS allows configured origins and answers preflight requests
func setupCORS(handler http.Handler, cors *config.CORSConfig) http.Handler {
	anyOrigin := cors.AllowsAnyOrigin()
	allowed := make(map[string]struct{}, len(cors.AllowedOrigins))
	for _, o := range cors.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	methods := strings.Join(cors.AllowedMethods, ", ")
	headers := strings.Join(cors.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cors.MaxAge)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && !anyOrigin {
			if _, ok := allowed[origin]; !ok {
				w.WriteHeader(http.StatusForbidden)
				return
			}
		}

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			// credentials only for an explicit allow-list
			if !anyOrigin {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		} else if anyOrigin {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", headers)
		w.Header().Set("Access-Control-Expose-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", maxAge)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogging attaches a request-scoped logger to the context and logs
// each request with its outcome.
func requestLogging(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger.L()
		if id, ok := r.Context().Value(goamiddleware.RequestIDKey).(string); ok && id != "" {
			log = log.With(logger.RequestID(id))
			w.Header().Set("X-Request-ID", id)
		}
		r = r.WithContext(logger.ToContext(r.Context(), log))

		// Health checks are not logged to reduce noise
		if r.URL.Path == healthPath {
			handler.ServeHTTP(w, r)
			return
		}

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		handler.ServeHTTP(wrapped, r)

		fields := []logger.Field{
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Status(wrapped.statusCode),
			logger.Duration(time.Since(start)),
			logger.String("remote_addr", r.RemoteAddr),
		}
		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			log.Error("request completed", fields...)
		case wrapped.statusCode >= http.StatusBadRequest:
			log.Warn("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	})
}
