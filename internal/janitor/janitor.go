// Package janitor runs periodic maintenance over finished report
// artifacts.
package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"store-monitor/internal/config"
	"store-monitor/internal/database"
)

// Janitor archives and prunes old report jobs on a fixed interval.
type Janitor struct {
	db     *database.DB
	cfg    config.MaintenanceConfig
	log    zerolog.Logger
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Janitor
func New(db *database.DB, cfg config.MaintenanceConfig, log zerolog.Logger) *Janitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Janitor{
		db:     db,
		cfg:    cfg,
		log:    log.With().Str("component", "janitor").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the maintenance worker.
func (j *Janitor) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop signals the worker to exit.
func (j *Janitor) Stop() {
	j.cancel()
}

// Wait blocks until the worker finishes.
func (j *Janitor) Wait() {
	j.wg.Wait()
}

func (j *Janitor) worker() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	// Run immediately on start
	j.performMaintenance()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.performMaintenance()
		}
	}
}

func (j *Janitor) performMaintenance() {
	j.log.Debug().Msg("running maintenance tasks")

	archived, err := j.db.ArchiveOldReports(j.ctx, j.cfg.ArchiveAfter)
	if err != nil {
		j.log.Warn().Err(err).Msg("failed to archive old reports")
	} else if archived > 0 {
		j.log.Info().Int("archived", archived).Msg("archived old reports")
	}

	pruned, err := j.db.PruneOldReports(j.ctx, j.cfg.DeleteAfter)
	if err != nil {
		j.log.Warn().Err(err).Msg("failed to prune old reports")
	} else if pruned > 0 {
		j.log.Info().Int("pruned", pruned).Msg("pruned old reports")
	}
}
