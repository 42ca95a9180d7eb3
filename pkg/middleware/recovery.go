package middleware

import (
	"net/http"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"runtime/debug"
)

const internalErrorPage = `<!DOCTYPE html><html><head><title>Error</title></head><body><h1>Something went wrong</h1><p><a href="/dashboard">Back to dashboard</a></p></body></html>`

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log.Error("Panic recovered",
						"request_id", requestID(r),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					if httputil.WantsJSON(r) {
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusInternalServerError)
						_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
						return
					}
					w.Header().Set("Content-Type", "text/html; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(internalErrorPage))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
