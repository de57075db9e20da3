package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/pgrapher/internal/metrics"
	"github.com/JakeFAU/pgrapher/internal/store"
)

type sessionKey struct{}

// SessionFromContext returns the session attached by the session scope.
func SessionFromContext(ctx context.Context) (store.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(store.Session)
	return sess, ok && sess != nil
}

// sessionScope acquires one session per request and releases it exactly once:
// when the response headers are about to be written, or when the handler
// returns or panics without writing anything.
func (s *Server) sessionScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Acquire(r.Context())
		if err != nil {
			metrics.ObserveAcquireFailure()
			s.logger.Error("acquire session failed",
				zap.Error(err),
				zap.String("path", r.URL.Path),
				zap.String("request_id", requestID(r.Context())),
			)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		metrics.IncSessionsInUse()

		var once sync.Once
		release := func() {
			once.Do(func() {
				sess.Release()
				metrics.DecSessionsInUse()
			})
		}
		defer release()

		rw := &releasingWriter{ResponseWriter: w, release: release}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// releasingWriter fires release right before the first header write.
type releasingWriter struct {
	http.ResponseWriter
	release func()
}

func (rw *releasingWriter) WriteHeader(code int) {
	rw.release()
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *releasingWriter) Write(b []byte) (int, error) {
	rw.release()
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}
