package domain

import "time"

// SalesMovement é um item vendido, produzido apenas pela consulta linha a linha
type SalesMovement struct {
	Date        string  `json:"date"`
	ClientID    string  `json:"client_id"`
	ClientName  string  `json:"client_name"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	BranchID    string  `json:"branch_id"`
	BranchName  string  `json:"branch_name"`
	Revenue     float64 `json:"revenue"`
	Units       float64 `json:"units"`
	Volume      float64 `json:"volume"`
	RegionCode  *string `json:"region_code"`
}

// OverviewMonthlyData é uma linha mensal do painel de indicadores.
// Razões são nulas quando o denominador é nulo, zero ou inexistente.
type OverviewMonthlyData struct {
	Month               string   `json:"month"`
	Revenue             float64  `json:"revenue"`
	PreviousRevenue     *float64 `json:"previous_revenue"`
	RevenueMoM          *float64 `json:"revenue_mom"`
	LastYearRevenue     *float64 `json:"last_year_revenue"`
	RevenueYoY          *float64 `json:"revenue_yoy"`
	Volume              float64  `json:"volume"`
	PreviousVolume      *float64 `json:"previous_volume"`
	VolumeMoM           *float64 `json:"volume_mom"`
	LastYearVolume      *float64 `json:"last_year_volume"`
	VolumeYoY           *float64 `json:"volume_yoy"`
	ActiveClients       int64    `json:"active_clients"`
	AverageTicket       *float64 `json:"average_ticket"`
	LeadingProductShare *float64 `json:"leading_product_share"`
	GoalRevenue         *float64 `json:"goal_revenue"`
	GoalAttainment      *float64 `json:"goal_attainment"`
}

type ClientGoalData struct {
	ClientID    string   `json:"client_id"`
	GoalRevenue *float64 `json:"goal_revenue"`
}

// ClientGoalsResult diferencia "metas não suportadas" de "nenhuma meta cadastrada"
type ClientGoalsResult struct {
	Supported bool             `json:"supported"`
	Goals     []ClientGoalData `json:"goals"`
}

type MonthlyRevenue struct {
	Month   string   `json:"month"`
	Revenue float64  `json:"revenue"`
	Volume  *float64 `json:"volume,omitempty"`
}

// KPICacheEntry é uma resposta serializada guardada no cache local
type KPICacheEntry struct {
	CacheKey  string
	TenantID  string
	Kind      string
	Payload   []byte
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
