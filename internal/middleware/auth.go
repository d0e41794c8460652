package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/zhouzirui/talker-manager/backend/pkg/utils"
)

// TokenHeader carries the static credential handed out by /login.
const TokenHeader = "Authorization"

// TokenGate rejects requests whose Authorization header is not exactly token.
func TokenGate(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(TokenHeader)
			if got == "" {
				utils.RespondError(w, http.StatusUnauthorized, "token not found")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				utils.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
