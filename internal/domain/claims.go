package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims é emitido pelo serviço de sessão externo; aqui apenas validamos
type Claims struct {
	UserID     int    `json:"user_id"`
	UserName   string `json:"user_name,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
	UserRoleID int    `json:"role_id"`
	TenantID   string `json:"tenant_id"`
	jwt.RegisteredClaims
}
