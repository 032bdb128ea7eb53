package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const (
	UserIDKey    ctxKey = "user_id"
	CompanyIDKey ctxKey = "company_id"
)

// JWTMiddleware validates the Authorization header and attaches the user and
// company ids to the request context. The company id is the tenant partition
// key for every downstream query; a token without one is rejected outright.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, "missing or invalid token", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(auth, "Bearer ")
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}
		companyID, ok := claims["company_id"].(string)
		if !ok || companyID == "" {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, CompanyIDKey, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identity pulls the authenticated (companyID, userID) pair from the context.
func Identity(ctx context.Context) (companyID, userID string, ok bool) {
	userID, uok := ctx.Value(UserIDKey).(string)
	companyID, cok := ctx.Value(CompanyIDKey).(string)
	return companyID, userID, uok && cok
}
