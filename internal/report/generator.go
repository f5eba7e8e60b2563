// Package report runs report jobs: it drives the engine, writes the
// CSV artifact plus auxiliary chart and summary, and owns the
// Running -> Complete/Failed transition.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"store-monitor/internal/config"
	"store-monitor/internal/engine"
	"store-monitor/internal/metrics"
	"store-monitor/internal/models"
)

// Generator creates report artifacts for triggered jobs.
type Generator struct {
	db          models.Database
	engine      *engine.Engine
	now         time.Time
	outputDir   string
	chartStores int
	metrics     metrics.Provider
	log         zerolog.Logger

	base context.Context
	wg   sync.WaitGroup
}

// New creates a Generator. now is the dataset's reference instant; the
// engine anchors every window to it. baseCtx bounds all background
// jobs: cancelling it stops in-flight computations, and those jobs end
// Failed, never Complete with partial rows.
func New(baseCtx context.Context, db models.Database, eng *engine.Engine, now time.Time, cfg config.ReportConfig, m metrics.Provider, log zerolog.Logger) *Generator {
	return &Generator{
		db:          db,
		engine:      eng,
		now:         now,
		outputDir:   cfg.OutputDir,
		chartStores: cfg.ChartStores,
		metrics:     m,
		log:         log.With().Str("component", "report").Logger(),
		base:        baseCtx,
	}
}

// Trigger registers a new Running job and starts generation in the
// background, returning the job id immediately.
func (g *Generator) Trigger(ctx context.Context) (string, error) {
	id := uuid.NewString()
	rec := models.Report{
		ID:        id,
		Status:    models.ReportRunning,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.db.CreateReport(ctx, rec); err != nil {
		return "", fmt.Errorf("create report job: %w", err)
	}

	g.wg.Add(1)
	go g.run(id)
	return id, nil
}

// Wait blocks until all in-flight jobs have finished their state
// transition.
func (g *Generator) Wait() {
	g.wg.Wait()
}

func (g *Generator) run(id string) {
	defer g.wg.Done()
	start := time.Now()
	log := g.log.With().Str("report_id", id).Logger()

	if err := g.generate(g.base, id); err != nil {
		log.Error().Err(err).Msg("report generation failed")
		g.metrics.IncReports("failed")
		// The base context may already be cancelled; the terminal state
		// must still be recorded.
		if _, ferr := g.db.FinishReport(context.Background(), id, models.ReportFailed, "", err.Error()); ferr != nil {
			log.Error().Err(ferr).Msg("could not mark report failed")
		}
		return
	}

	g.metrics.IncReports("complete")
	g.metrics.ObserveReportDuration(time.Since(start))
	log.Info().Dur("took", time.Since(start)).Msg("report generated")
}

func (g *Generator) generate(ctx context.Context, id string) error {
	storeIDs, err := g.db.StoreIDs(ctx)
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}
	g.metrics.SetStoresTotal(len(storeIDs))

	rows, err := g.engine.ComputeReport(ctx, g.now, storeIDs)
	if err != nil {
		return fmt.Errorf("compute report: %w", err)
	}

	dir := filepath.Join(g.outputDir, "report_"+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	csvPath := filepath.Join(dir, "report.csv")
	if err := writeCSV(csvPath, rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	// Chart and summary are best effort; only the CSV gates completion.
	if err := g.generateDowntimeChart(dir, rows); err != nil {
		g.log.Warn().Str("report_id", id).Err(err).Msg("failed to generate downtime chart")
	}
	if err := g.generateTextSummary(dir, id, rows); err != nil {
		g.log.Warn().Str("report_id", id).Err(err).Msg("failed to generate text summary")
	}

	ok, err := g.db.FinishReport(ctx, id, models.ReportComplete, csvPath, "")
	if err != nil {
		return fmt.Errorf("mark report complete: %w", err)
	}
	if !ok {
		return fmt.Errorf("report %s was already finished", id)
	}
	return nil
}
