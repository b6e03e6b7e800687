package middleware

import (
	"fmt"
	"net/http"

	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-kpi-api/pkg/apiErrors"
	"github.com/vfg2006/sales-kpi-api/pkg/log"
)

// Perfis emitidos pelo serviço de sessão na claim role_id
const (
	RoleAdmin      = 1
	RoleSupervisor = 2
	RoleClient     = 3
)

// RoleMiddleware restringe a rota aos perfis informados
func RoleMiddleware(allowedRoles ...int) func(http.Handler) http.Handler {
	allowed := make(map[int]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.ForContext(r.Context())

			userClaims, ok := r.Context().Value(ContextKeyUser).(*domain.Claims)
			if !ok {
				err := authenticating.NewAuthError(authenticating.ErrInvalidToken, apiErrors.ErrInvalidToken, "usuário não autenticado")
				logger.WithError(err).Warn("Tentativa de acesso sem autenticação")
				writeAuthError(w, err)
				return
			}

			if !allowed[userClaims.UserRoleID] {
				err := authenticating.NewAuthError(authenticating.ErrInsufficientPrivilege, apiErrors.ErrInsufficientPrivilege,
					fmt.Sprintf("perfil %d fora de %v", userClaims.UserRoleID, allowedRoles))
				logger.WithError(err).WithFields(log.Fields{
					"user_id":   userClaims.UserID,
					"user_role": userClaims.UserRoleID,
					"path":      r.URL.Path,
				}).Warn("Acesso negado")
				writeAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly libera apenas administradores (invalidação de cache e cron jobs)
func AdminOnly() func(http.Handler) http.Handler {
	return RoleMiddleware(RoleAdmin)
}

// AllRoles exige apenas um usuário autenticado com perfil conhecido
func AllRoles() func(http.Handler) http.Handler {
	return RoleMiddleware(RoleAdmin, RoleSupervisor, RoleClient)
}
