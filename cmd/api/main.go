package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-kpi-api/infrastructure/integrator/dbproxy"
	"github.com/vfg2006/sales-kpi-api/infrastructure/integrator/dbproxy/dbproxyclient"
	"github.com/vfg2006/sales-kpi-api/infrastructure/repository"
	"github.com/vfg2006/sales-kpi-api/internal/analytics/probe"
	"github.com/vfg2006/sales-kpi-api/internal/api"
	"github.com/vfg2006/sales-kpi-api/internal/api/handler"
	"github.com/vfg2006/sales-kpi-api/internal/config"
	"github.com/vfg2006/sales-kpi-api/internal/scheduler"
	"github.com/vfg2006/sales-kpi-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-kpi-api/internal/usecases/insighting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authenticator := authenticating.NewService(cfg)

	proxyClient := dbproxyclient.NewClient(cfg)
	executor := dbproxy.New(cfg, proxyClient)

	schema := insighting.SchemaFromConfig(cfg.Analytics)
	prober := probe.NewCachedProber(probe.NewSchemaProber(executor, schema), cfg.Analytics.CapabilityTTL)

	insightService := insighting.NewService(cfg, executor, prober)

	// O cache local de resultados é opcional; sem ele nenhum banco local é necessário
	var kpiCacheSync handler.CronJob
	if cfg.KPICache.Enabled {
		pgConn := pgconn(ctx, cfg.Database)
		defer pgConn.Close()

		kpiCacheRepo := repository.NewKPICacheRepository(pgConn)
		insightService = insightService.WithCache(kpiCacheRepo)

		kpiCacheSyncService := scheduler.NewKPICacheSyncService(kpiCacheRepo, insightService, cfg)
		if err := kpiCacheSyncService.Start(ctx); err != nil {
			logrus.WithError(err).Error("Erro ao iniciar o agendador do cache de indicadores")
		} else {
			logrus.Info("Agendador do cache de indicadores iniciado com sucesso")
		}
		kpiCacheSync = kpiCacheSyncService
	}

	server, err := api.New(ctx, cfg, insightService, authenticator, kpiCacheSync)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
