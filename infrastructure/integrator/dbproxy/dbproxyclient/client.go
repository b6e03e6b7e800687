package dbproxyclient

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/sales-kpi-api/internal/config"
	"golang.org/x/time/rate"
)

// Números chegam como json.Number para que o normalizador decida o tipo final
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type Client interface {
	ListDatabases(ctx context.Context, tenantID string) ([]DatabaseRegistration, error)
	Query(ctx context.Context, databaseID string, sqlText string) (QueryResponse, error)
}

type DBProxyClient struct {
	httpClient *http.Client
	config     *config.Config
	limiter    *rate.Limiter
}

// NewClient cria o cliente HTTP do proxy de banco
func NewClient(cfg *config.Config) Client {
	limit := rate.Inf
	if cfg.Proxy.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Proxy.RequestsPerSecond)
	}

	burst := cfg.Proxy.Burst
	if burst <= 0 {
		burst = 1
	}

	return &DBProxyClient{
		httpClient: &http.Client{},
		config:     cfg,
		limiter:    rate.NewLimiter(limit, burst),
	}
}
