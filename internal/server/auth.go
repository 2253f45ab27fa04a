package server

import (
	"net/http"

	"git.appkode.ru/pub/go/failure"

	"bid_market/pkg/contextx"
	"bid_market/pkg/errcodes"
	"bid_market/pkg/httpx/reply"
)

const headerNameUserID = "X-User-Id"

// Auth resolves the caller's user ID from the session header into the
// request context. Session validation itself is the identity
// platform's job; the backend only needs the resolved subject.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(headerNameUserID)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := contextx.WithUserID(r.Context(), contextx.UserID(userID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth guards routes that need an authenticated caller.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if _, err := contextx.UserIDFromContext(ctx); err != nil {
			reply.Error(ctx, w, failure.NewUnauthorizedError(
				"authentication required",
				failure.WithCode(errcodes.AuthRequired),
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}
