package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/knockout-arena/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const claimsContextKey contextKey = "claims"

const (
	jwtClaimUsername = "username"
	jwtClaimRole     = "role"
)

// Claims — проверенная личность вызывающего, положенная в контекст запроса.
type Claims struct {
	Username string
	Role     models.UserRole
}

func (c Claims) IsAdmin() bool { return c.Role == models.RoleAdmin }

// GenerateToken выписывает HS256-токен с именем и ролью.
func GenerateToken(secret []byte, username string, role models.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		jwtClaimUsername: username,
		jwtClaimRole:     string(role),
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// ParseToken валидирует токен и возвращает claims. Используется и
// HTTP-миддлварью, и websocket-обработчиком (токен в query-параметре).
func ParseToken(secret []byte, tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token claims")
	}

	username, _ := mapClaims[jwtClaimUsername].(string)
	roleStr, _ := mapClaims[jwtClaimRole].(string)
	role := models.UserRole(roleStr)
	if username == "" || (role != models.RoleAdmin && role != models.RolePlayer) {
		return Claims{}, fmt.Errorf("token is missing identity claims")
	}
	return Claims{Username: username, Role: role}, nil
}

// Authenticate проверяет Bearer-токен и кладёт claims в контекст.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает только вызывающих с одной из перечисленных ролей.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(Claims)
	return claims, ok
}
