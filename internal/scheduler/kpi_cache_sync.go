package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/infrastructure/repository"
	"github.com/vfg2006/sales-kpi-api/internal/config"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/internal/usecases/insighting"
)

// KPICacheSyncConfig representa a configuração do agendador do cache de indicadores
type KPICacheSyncConfig struct {
	CronSchedule      string
	WarmTenants       []string
	MaxConcurrentJobs int
	SyncEnabled       bool
	JobTimeout        time.Duration
}

// KPICacheSyncService remove entradas expiradas do cache de resultados e
// recalcula o painel padrão dos tenants configurados
type KPICacheSyncService struct {
	scheduler           *gocron.Scheduler
	config              KPICacheSyncConfig
	kpiCacheRepo        repository.KPICacheRepository
	insighter           insighting.SalesInsighter
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastPurged          int64
	lastWarmed          int
	lastFailed          int
}

func NewKPICacheSyncService(
	kpiCacheRepo repository.KPICacheRepository,
	insighter insighting.SalesInsighter,
	appConfig *config.Config,
) *KPICacheSyncService {
	syncConfig := KPICacheSyncConfig{
		CronSchedule:      appConfig.KPICacheSync.CronSchedule,
		WarmTenants:       appConfig.KPICacheSync.WarmTenants,
		MaxConcurrentJobs: appConfig.KPICacheSync.MaxConcurrentJobs,
		SyncEnabled:       appConfig.KPICacheSync.Enabled,
		JobTimeout:        10 * time.Minute,
	}
	if syncConfig.MaxConcurrentJobs <= 0 {
		syncConfig.MaxConcurrentJobs = 1
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"warm_tenants":        len(syncConfig.WarmTenants),
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador do cache de indicadores carregada")

	return &KPICacheSyncService{
		scheduler:    gocron.NewScheduler(time.Local),
		config:       syncConfig,
		kpiCacheRepo: kpiCacheRepo,
		insighter:    insighter,
	}
}

// Start inicia o agendador
func (s *KPICacheSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização do cache de indicadores desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do cache de indicadores")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização do cache de indicadores: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do cache de indicadores")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *KPICacheSyncService) syncAll(parent context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização do cache de indicadores já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	ctx, cancel := context.WithTimeout(parent, s.config.JobTimeout)
	defer cancel()

	startTime := time.Now()

	purged, err := s.kpiCacheRepo.DeleteExpired(ctx)
	if err != nil {
		logrus.WithError(err).Error("Erro ao remover entradas expiradas do cache de indicadores")
	} else {
		logrus.WithField("deleted", purged).Info("Entradas expiradas do cache de indicadores removidas")
	}

	warmed, failed := s.warmTenants(ctx)

	s.syncMutex.Lock()
	s.lastPurged = purged
	s.lastWarmed = warmed
	s.lastFailed = failed
	s.lastSyncCompletedAt = time.Now()
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"purged":   purged,
		"warmed":   warmed,
		"failed":   failed,
	}).Info("Sincronização do cache de indicadores concluída")
}

// warmTenants recalcula o painel padrão (últimos 12 meses fechados) de cada tenant
func (s *KPICacheSyncService) warmTenants(ctx context.Context) (warmed, failed int) {
	if len(s.config.WarmTenants) == 0 {
		return 0, 0
	}

	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, tenantID := range s.config.WarmTenants {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(tenantID string) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			_, err := s.insighter.GetMonthlyOverview(ctx, tenantID, domain.KPIRequest{})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				logrus.WithError(err).WithField("tenant_id", tenantID).Error("Erro ao aquecer cache de indicadores do tenant")
				return
			}
			warmed++
		}(tenantID)
	}

	wg.Wait()
	return warmed, failed
}

// TriggerManualSync inicia manualmente uma sincronização do cache
func (s *KPICacheSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização do cache de indicadores já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual do cache de indicadores")
	go s.syncAll(context.Background())
}

// GetStatus retorna o status atual do agendador
func (s *KPICacheSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"warm_tenants":           len(s.config.WarmTenants),
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_purged":            s.lastPurged,
		"last_warmed":            s.lastWarmed,
		"last_failed":            s.lastFailed,
	}
}
