package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Proxy        Proxy        `mapstructure:",squash"`
	Analytics    Analytics    `mapstructure:",squash"`
	KPICache     KPICache     `mapstructure:",squash"`
	KPICacheSync KPICacheSync `mapstructure:",squash"`
	RateLimit    RateLimit    `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// Database é o banco local usado apenas como cache de resultados de KPI
type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`

	MaxOpenConns int `mapstructure:"database_max_open_conns"`
}

// Proxy aponta para o serviço externo que executa SQL nos bancos dos tenants
type Proxy struct {
	URL               string        `mapstructure:"db_proxy_url"`
	AccessToken       string        `mapstructure:"db_proxy_access_token"`
	Timeout           time.Duration `mapstructure:"db_proxy_timeout"`
	RequestsPerSecond float64       `mapstructure:"db_proxy_rate_limit_rps"`
	Burst             int           `mapstructure:"db_proxy_rate_limit_burst"`
}

type Analytics struct {
	CapabilityTTL    time.Duration `mapstructure:"analytics_capability_ttl"`
	MaxRows          int           `mapstructure:"analytics_max_rows"`
	MovementTable    string        `mapstructure:"analytics_movement_table"`
	ItemTable        string        `mapstructure:"analytics_item_table"`
	ClientTable      string        `mapstructure:"analytics_client_table"`
	BranchTable      string        `mapstructure:"analytics_branch_table"`
	ProductTable     string        `mapstructure:"analytics_product_table"`
	ClientGroupTable string        `mapstructure:"analytics_client_group_table"`
	GoalTable        string        `mapstructure:"analytics_goal_table"`
	FlatTable        string        `mapstructure:"analytics_flat_table"`
}

type KPICache struct {
	Enabled bool          `mapstructure:"kpi_cache_enabled"`
	TTL     time.Duration `mapstructure:"kpi_cache_ttl"`
}

type KPICacheSync struct {
	CronSchedule      string   `mapstructure:"kpi_cache_sync_cron"`
	WarmTenants       []string `mapstructure:"kpi_cache_warm_tenants"`
	MaxConcurrentJobs int      `mapstructure:"kpi_cache_sync_max_concurrent_jobs"`
	Enabled           bool     `mapstructure:"kpi_cache_sync_enabled"`
}

type RateLimit struct {
	RequestsPerSecond float64 `mapstructure:"rate_limit_rps"`
	Burst             int     `mapstructure:"rate_limit_burst"`
	Enabled           bool    `mapstructure:"rate_limit_enabled"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/sales_kpi")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)

	viper.SetDefault("DB_PROXY_URL", "http://localhost:8080/api")
	viper.SetDefault("DB_PROXY_ACCESS_TOKEN", "your_access_token") // ONLY LOCAL
	viper.SetDefault("DB_PROXY_TIMEOUT", "45s")
	viper.SetDefault("DB_PROXY_RATE_LIMIT_RPS", 10)
	viper.SetDefault("DB_PROXY_RATE_LIMIT_BURST", 20)

	viper.SetDefault("ANALYTICS_CAPABILITY_TTL", "1h")
	viper.SetDefault("ANALYTICS_MAX_ROWS", 5000) // Limite para consultas linha a linha
	viper.SetDefault("ANALYTICS_MOVEMENT_TABLE", "movimentacoes")
	viper.SetDefault("ANALYTICS_ITEM_TABLE", "movimentacao_itens")
	viper.SetDefault("ANALYTICS_CLIENT_TABLE", "clientes")
	viper.SetDefault("ANALYTICS_BRANCH_TABLE", "filiais")
	viper.SetDefault("ANALYTICS_PRODUCT_TABLE", "produtos")
	viper.SetDefault("ANALYTICS_CLIENT_GROUP_TABLE", "cliente_grupos")
	viper.SetDefault("ANALYTICS_GOAL_TABLE", "metas")
	viper.SetDefault("ANALYTICS_FLAT_TABLE", "vendas")

	viper.SetDefault("KPI_CACHE_ENABLED", false)
	viper.SetDefault("KPI_CACHE_TTL", "1h")

	viper.SetDefault("KPI_CACHE_SYNC_CRON", "0 * * * *") // A cada hora cheia
	viper.SetDefault("KPI_CACHE_WARM_TENANTS", "")
	viper.SetDefault("KPI_CACHE_SYNC_MAX_CONCURRENT_JOBS", 3)
	viper.SetDefault("KPI_CACHE_SYNC_ENABLED", false)

	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)

	viper.SetDefault("AUTH_SECRET", "your_secret_key")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.KPICacheSync.WarmTenants = compact(config.KPICacheSync.WarmTenants)
	config.Server.AllowedOrigins = compact(config.Server.AllowedOrigins)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// compact remove entradas vazias geradas por listas como "a,,b" ou ""
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Info("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
