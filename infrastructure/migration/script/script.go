package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-kpi-api/infrastructure/repository"
	"github.com/vfg2006/sales-kpi-api/internal/config"
)

// Aplica o DDL do cache local de resultados. Idempotente.
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.Info("Iniciando script de migração...")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao carregar configuração")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}
	defer conn.Close()

	startTime := time.Now()
	err = conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, repository.KPICacheDDL)
		return err
	})
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao criar a tabela kpi_cache")
	}

	logrus.WithField("elapsed", time.Since(startTime)).Info("Migração concluída")
}
