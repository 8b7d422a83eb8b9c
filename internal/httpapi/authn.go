package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth resolves the bearer session token into an account and stores it in
// the request context. Requests without a valid token proceed anonymously;
// handlers that need a caller reject them individually.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		accountID, err := auth.ParseSessionToken(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		acc, err := a.accounts.Get(r.Context(), accountID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := account.ContextWithAccount(r.Context(), acc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAccount writes 401 and returns false when the request carries no
// authenticated account.
func (a *API) requireAccount(w http.ResponseWriter, r *http.Request) (*account.Account, bool) {
	acc, ok := account.FromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return acc, true
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
