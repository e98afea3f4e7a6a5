// ABOUTME: HTTP middleware for bearer authentication on admin API endpoints
// ABOUTME: Accepts HS256 JWTs or configured static API keys

package auth

import (
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// HTTPAuthMiddleware creates an HTTP middleware that authenticates requests.
// A bearer credential is first tried as a JWT; if that fails and an API key
// verifier is configured, it is tried as a static key. The operator identity
// lands in the request context via WithOperator.
func HTTPAuthMiddleware(verifier TokenVerifier, apiKeys *APIKeyVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				http.Error(w, `{"error":"`+errMsg+`"}`, http.StatusUnauthorized)
				return
			}

			var operatorID string
			err := ErrInvalidToken
			if verifier != nil {
				operatorID, err = verifier.Verify(token)
			}
			if err != nil && apiKeys != nil {
				if apiKeys.Verify(token) == nil {
					operatorID, err = "api-key", nil
				}
			}
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := WithOperator(r.Context(), &Operator{ID: operatorID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
