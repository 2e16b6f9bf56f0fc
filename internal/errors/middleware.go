package errors

import (
	"net/http"
)

// RecoveryMiddleware turns panics inside API handlers into RFC 7807
// responses through the error handler. The outer Recoverer in the middleware
// package stays as the catch-all for the rest of the chain.
func RecoveryMiddleware(handler *ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					handler.HandlePanic(w, r, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
