package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a panic anywhere below it into a logged error and a JSON
// recovery payload telling the client to reload. With verbose set the stack
// is also printed to stderr.
func Recoverer(logger *slog.Logger, verbose bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)
				if verbose {
					debug.PrintStack()
				}

				writeErrorBody(w, http.StatusInternalServerError, errorBody{
					Error:    "Something went wrong. Please reload the page.",
					Code:     "INTERNAL_ERROR",
					Recovery: "reload",
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
