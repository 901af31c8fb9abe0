package middleware

import (
	"net/http"
	"strings"

	"github.com/dukerupert/haulfile/internal/domain"
)

// FilerIDHeader carries the authenticated filer's user ID. The gateway in
// front of haulfile verifies the session and sets it; clients cannot.
const FilerIDHeader = "X-Filer-ID"

// FilerID copies the gateway-supplied filer ID into the request context.
// Requests without the header pass through anonymously.
func FilerID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(FilerIDHeader))
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := domain.NewContextWithFilerID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
