package dbproxy

import (
	"errors"
	"fmt"

	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

var (
	// Erros de configuração do tenant: fatais e nunca repetidos automaticamente
	ErrNotConfigured    = errors.New("nenhum banco de dados registrado para o tenant")
	ErrNoActiveDatabase = errors.New("nenhum banco de dados ativo para o tenant")

	// Falha reportada pelo proxy ou na comunicação com ele
	ErrExecutionFailed = errors.New("falha ao executar consulta no proxy")
)

// ProxyError é um erro com contexto do tenant e do banco envolvidos
type ProxyError struct {
	Err        error  // Erro base
	Code       string // Código de erro para API
	TenantID   string
	DatabaseID string
	Details    string // Para falhas de execução, a mensagem original do proxy
}

// Error devolve a mensagem do proxy sem alterações nas falhas de execução
func (e *ProxyError) Error() string {
	if errors.Is(e.Err, ErrExecutionFailed) && e.Details != "" {
		return e.Details
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

// NewTenantError cria um erro de configuração do tenant
func NewTenantError(err error, code string, tenantID string) *ProxyError {
	return &ProxyError{
		Err:      err,
		Code:     code,
		TenantID: tenantID,
		Details:  tenantID,
	}
}

// NewExecutionError cria um erro de execução preservando a mensagem do proxy
func NewExecutionError(code string, ref domain.TenantDatabaseRef, message string) *ProxyError {
	return &ProxyError{
		Err:        ErrExecutionFailed,
		Code:       code,
		TenantID:   ref.TenantID,
		DatabaseID: ref.DatabaseID,
		Details:    message,
	}
}
