package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
)

// RoleAdmin значение claim role администратора
const RoleAdmin = "admin"

const (
	msgMissingToken = "отсутствует токен авторизации"
	msgInvalidToken = "некорректный токен авторизации"
	msgForbidden    = "доступ запрещен"
)

var (
	// ErrNotAdmin возвращается, когда токен выдан не администратору
	ErrNotAdmin = errors.New("middleware: token has no admin role")
)

type adminIDKey struct{}

// AdminClaims claims токена администратора
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth пропускает только запросы с Bearer JWT (HS256), подписанным secret и с role=admin.
// Subject токена сохраняется в контексте запроса.
func AdminAuth(secret string, logger Logger) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				logger.Warn("AdminAuth: %s %s - missing bearer token", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}

			claims, err := ParseAdminToken(strings.TrimSpace(raw), key)
			if err != nil {
				if errors.Is(err, ErrNotAdmin) {
					logger.Warn("AdminAuth: %s %s - subject=%s is not admin", r.Method, r.URL.Path, claims.Subject)
					handlers.RespondForbidden(w, msgForbidden)
					return
				}
				logger.Warn("AdminAuth: %s %s - invalid token: %v", r.Method, r.URL.Path, err)
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseAdminToken проверяет подпись и срок действия токена и наличие роли администратора
func ParseAdminToken(raw string, key []byte) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return claims, err
	}
	if claims.Role != RoleAdmin {
		return claims, fmt.Errorf("%w: role %q", ErrNotAdmin, claims.Role)
	}
	return claims, nil
}

// GetAdminID возвращает subject токена администратора из контекста
func GetAdminID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(adminIDKey{}).(string)
	return id, ok
}
