package web

import (
	"bytes"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: https:; " +
	"font-src 'self' https://fonts.gstatic.com; " +
	"connect-src 'self'"

// Chain applies middleware so that the first one listed runs outermost.
func Chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		next.ServeHTTP(w, r)
	})
}

// CORS answers preflight requests and echoes the Origin header back when it
// is on the allow list. A "*" entry allows any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(allowedOrigins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(allowedOrigins, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	maxLogBytes  int
	bytesWritten int
	logBody      bytes.Buffer
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if room := r.maxLogBytes - r.logBody.Len(); room > 0 {
		if len(p) > room {
			r.logBody.Write(p[:room])
			r.truncated = true
		} else {
			r.logBody.Write(p)
		}
	} else if len(p) > 0 {
		r.truncated = true
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytesWritten += n
	return n, err
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LogRequests logs one line per request. Error responses carry the first
// maxBodyBytes of the body, which is where the JSON error message lives.
func LogRequests(logger *zap.Logger, maxBodyBytes int) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				maxLogBytes:    maxBodyBytes,
			}
			next.ServeHTTP(recorder, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.statusCode),
				zap.Int("bytes", recorder.bytesWritten),
				zap.Duration("duration", time.Since(start)),
			}
			switch {
			case recorder.statusCode >= http.StatusInternalServerError:
				fields = append(fields, bodyField(recorder))
				logger.Error("request failed", fields...)
			case recorder.statusCode >= http.StatusBadRequest:
				fields = append(fields, bodyField(recorder))
				logger.Warn("request rejected", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

func bodyField(r *statusRecorder) zap.Field {
	body := strings.TrimSpace(r.logBody.String())
	if r.truncated {
		body += "..."
	}
	return zap.String("body", body)
}
