package handler

import (
	"errors"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/sales-kpi-api/infrastructure/integrator/dbproxy"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/internal/usecases/insighting"
	"github.com/vfg2006/sales-kpi-api/pkg/apiErrors"
	"github.com/vfg2006/sales-kpi-api/pkg/log"
	"github.com/vfg2006/sales-kpi-api/pkg/middleware"
	"github.com/vfg2006/sales-kpi-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GetMonthlyOverview retorna o painel mensal de indicadores do tenant
func GetMonthlyOverview(service insighting.SalesInsighter) http.Handler {
	return kpiHandler("overview", func(r *http.Request, tenantID string, req domain.KPIRequest) (any, int, error) {
		data, err := service.GetMonthlyOverview(r.Context(), tenantID, req)
		return data, len(data), err
	})
}

// GetSalesMovements retorna os itens vendidos no período
func GetSalesMovements(service insighting.SalesInsighter) http.Handler {
	return kpiHandler("movements", func(r *http.Request, tenantID string, req domain.KPIRequest) (any, int, error) {
		data, err := service.GetSalesMovements(r.Context(), tenantID, req)
		return data, len(data), err
	})
}

func GetMonthlyRevenue(service insighting.SalesInsighter) http.Handler {
	return kpiHandler("revenue", func(r *http.Request, tenantID string, req domain.KPIRequest) (any, int, error) {
		data, err := service.GetMonthlyRevenue(r.Context(), tenantID, req)
		return data, len(data), err
	})
}

func GetClientGoals(service insighting.SalesInsighter) http.Handler {
	return kpiHandler("goals", func(r *http.Request, tenantID string, req domain.KPIRequest) (any, int, error) {
		data, err := service.GetClientGoals(r.Context(), tenantID, req)
		if err != nil {
			return nil, 0, err
		}
		return data, len(data.Goals), nil
	})
}

// GetCapabilities retorna as capacidades detectadas no banco do tenant
func GetCapabilities(service insighting.SalesInsighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		tenantID, ok := resolveTenant(w, r)
		if !ok {
			return
		}

		caps, err := service.GetCapabilities(r.Context(), tenantID)
		if err != nil {
			logger.WithError(err).WithField("tenant_id", tenantID).Error("capabilities: erro ao sondar esquema")
			writeAnalyticsError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, caps)
	})
}

// InvalidateCapabilities descarta as capacidades e os resultados em cache do tenant
func InvalidateCapabilities(service insighting.SalesInsighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		tenantID, ok := resolveTenant(w, r)
		if !ok {
			return
		}

		if err := service.InvalidateTenant(r.Context(), tenantID); err != nil {
			logger.WithError(err).WithField("tenant_id", tenantID).Error("capabilities: erro ao invalidar cache")
			writeAnalyticsError(w, err)
			return
		}

		logger.WithField("tenant_id", tenantID).Info("capabilities: cache invalidado")
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   "Cache do tenant invalidado",
			"tenant_id": tenantID,
		})
	})
}

type kpiFunc func(r *http.Request, tenantID string, req domain.KPIRequest) (data any, count int, err error)

func kpiHandler(name string, fn kpiFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		tenantID, ok := resolveTenant(w, r)
		if !ok {
			return
		}

		req, err := parseKPIRequest(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Data inválida. Use o formato YYYY-MM-DD", err.Error())
			return
		}

		data, count, err := fn(r, tenantID, req)
		if err != nil {
			logger.WithError(err).WithFields(log.Fields{
				"tenant_id": tenantID,
				"kpi":       name,
			}).Error("analytics: erro ao calcular indicadores")
			writeAnalyticsError(w, err)
			return
		}

		logger.WithFields(log.Fields{
			"tenant_id": tenantID,
			"kpi":       name,
			"rows":      count,
		}).Info("analytics: indicadores calculados")

		writeJSON(w, http.StatusOK, data)
	})
}

// resolveTenant lê o tenant das claims; administradores podem consultar outro
// tenant via ?tenant_id=
func resolveTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
		return "", false
	}

	tenantID := claims.TenantID
	if override := strings.TrimSpace(r.URL.Query().Get("tenant_id")); override != "" && claims.UserRoleID == middleware.RoleAdmin {
		tenantID = override
	}

	if tenantID == "" {
		apiErrors.WriteError(w, apiErrors.ErrMissingTenant, "Token sem tenant associado", nil)
		return "", false
	}

	return tenantID, true
}

func parseKPIRequest(r *http.Request) (domain.KPIRequest, error) {
	query := r.URL.Query()

	start, err := utils.ParseDate(query.Get("start"))
	if err != nil {
		return domain.KPIRequest{}, err
	}

	end, err := utils.ParseDate(query.Get("end"))
	if err != nil {
		return domain.KPIRequest{}, err
	}

	return domain.KPIRequest{
		Filter: domain.DimensionFilter{
			Branches: splitList(query.Get("branch")),
			Clients:  splitList(query.Get("client")),
			Products: splitList(query.Get("product")),
			Groups:   splitList(query.Get("group")),
		},
		Window: domain.DateWindow{Start: start, End: end},
	}, nil
}

// splitList transforma "a, b,,c" em [a b c]; vazio vira nil (sem restrição)
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func writeAnalyticsError(w http.ResponseWriter, err error) {
	var proxyErr *dbproxy.ProxyError

	switch {
	case errors.Is(err, insighting.ErrInvalidWindow):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
	case errors.As(err, &proxyErr) && proxyErr.Code != "":
		apiErrors.WriteError(w, proxyErr.Code, proxyErr.Error(), map[string]string{
			"tenant_id":   proxyErr.TenantID,
			"database_id": proxyErr.DatabaseID,
		})
	case errors.Is(err, dbproxy.ErrNotConfigured):
		apiErrors.WriteError(w, apiErrors.ErrTenantDatabaseNotConfigured, err.Error(), nil)
	case errors.Is(err, dbproxy.ErrNoActiveDatabase):
		apiErrors.WriteError(w, apiErrors.ErrTenantDatabaseInactive, err.Error(), nil)
	case errors.Is(err, dbproxy.ErrExecutionFailed):
		apiErrors.WriteError(w, apiErrors.ErrQueryExecution, err.Error(), nil)
	default:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao calcular indicadores", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L.WithError(err).Error("analytics: erro ao codificar resposta")
	}
}
