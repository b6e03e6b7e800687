package domain

// TenantDatabaseRef identifica o banco externo de um tenant registrado no proxy
type TenantDatabaseRef struct {
	TenantID   string `json:"tenant_id"`
	DatabaseID string `json:"database_id"`
	IsActive   bool   `json:"is_active"`
}
