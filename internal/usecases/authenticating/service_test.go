package authenticating

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-kpi-api/internal/config"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

const testSecret = "segredo-de-teste"

func signToken(t *testing.T, method jwt.SigningMethod, key any, expiresAt time.Time) string {
	t.Helper()

	claims := domain.Claims{
		UserID:     7,
		UserName:   "Ana",
		UserRoleID: 3,
		TenantID:   "tenant-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestService_ValidateToken(t *testing.T) {
	svc := NewService(&config.Config{Auth: config.Auth{Secret: testSecret}})

	tests := []struct {
		name      string
		token     func(t *testing.T) string
		wantErr   error
		wantClaim *domain.Claims
	}{
		{
			name: "token válido retorna claims com tenant",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(time.Hour))
			},
			wantClaim: &domain.Claims{UserID: 7, UserRoleID: 3, TenantID: "tenant-1"},
		},
		{
			name: "token expirado",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(-time.Hour))
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "assinatura com outro segredo",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, []byte("outro"), time.Now().Add(time.Hour))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "token malformado",
			token: func(t *testing.T) string {
				return "nao.e.jwt"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "algoritmo none é rejeitado",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, time.Now().Add(time.Hour))
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token(t))

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsAuthorizationError(err))
				assert.Nil(t, claims)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantClaim.UserID, claims.UserID)
			assert.Equal(t, tt.wantClaim.UserRoleID, claims.UserRoleID)
			assert.Equal(t, tt.wantClaim.TenantID, claims.TenantID)
		})
	}
}
