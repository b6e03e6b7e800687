package probe

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/internal/observability"
)

const DefaultCapabilityTTL = time.Hour

// CapabilityCache é um Prober com invalidação explícita por tenant
type CapabilityCache interface {
	Prober
	Invalidate(tenantID string)
}

// Limite de tenants em memória; o menos usado sai primeiro
const maxCachedTenants = 4096

type cachedCapabilities struct {
	databaseID string
	caps       domain.CapabilitySet
}

// CachedProber guarda o resultado da sondagem por tenant durante o TTL.
// Sondagens degradadas não são guardadas para que a próxima requisição tente de novo.
type CachedProber struct {
	prober  Prober
	entries *expirable.LRU[string, cachedCapabilities]
}

func NewCachedProber(prober Prober, ttl time.Duration) *CachedProber {
	if ttl <= 0 {
		ttl = DefaultCapabilityTTL
	}
	return &CachedProber{
		prober:  prober,
		entries: expirable.NewLRU[string, cachedCapabilities](maxCachedTenants, nil, ttl),
	}
}

func (c *CachedProber) Probe(ctx context.Context, ref domain.TenantDatabaseRef) domain.CapabilitySet {
	entry, ok := c.entries.Get(ref.TenantID)

	// Troca do banco ativo do tenant também invalida a entrada
	if ok && entry.databaseID == ref.DatabaseID {
		observability.RecordCacheLookup("capabilities", "hit")
		return entry.caps
	}
	observability.RecordCacheLookup("capabilities", "miss")

	caps := c.prober.Probe(ctx, ref)
	if caps.Degraded {
		return caps
	}

	c.entries.Add(ref.TenantID, cachedCapabilities{databaseID: ref.DatabaseID, caps: caps})

	return caps
}

func (c *CachedProber) Invalidate(tenantID string) {
	c.entries.Remove(tenantID)

	logrus.WithField("tenant_id", tenantID).Info("Cache de capacidades invalidado")
}
