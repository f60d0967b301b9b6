package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/IgorGrieder/shortlink/internal/apperr"
	"github.com/IgorGrieder/shortlink/internal/transport/http/httperr"
)

var errBadBearerToken = errors.New("missing or invalid bearer token")

// BearerTokenMiddleware requires "Authorization: Bearer <token>". An empty
// token leaves the route open.
func BearerTokenMiddleware(token string) func(http.Handler) http.Handler {
	token = strings.TrimSpace(token)
	if token == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				httperr.Write(w, r, apperr.E("middleware.BearerToken", apperr.Unauthorized, errBadBearerToken))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
