// Package monitor keeps the network analysis current by re-running it
// periodically and whenever resource counts change.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/analysis"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/config"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/metrics"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/repository"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/stream"
)

type Manager struct {
	cfg         *config.Config
	repo        repository.Store
	levels      models.MinimumLevels
	broadcaster *stream.Broadcaster

	latest  atomic.Pointer[analysis.Result]
	trigger chan struct{}
	runMu   sync.Mutex
	wg      sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.Store, levels models.MinimumLevels, broadcaster *stream.Broadcaster) *Manager {
	return &Manager{
		cfg:         cfg,
		repo:        repo,
		levels:      levels,
		broadcaster: broadcaster,
		trigger:     make(chan struct{}, 1),
	}
}

// Start runs an initial analysis and then re-analyzes on every tick or
// Trigger until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.loop(ctx)
}

func (m *Manager) loop(ctx context.Context) {
	defer m.wg.Done()
	slog.Info("starting analysis loop", "interval", m.cfg.Analysis.Interval)

	ticker := time.NewTicker(m.cfg.Analysis.Interval)
	defer ticker.Stop()

	m.runLogged(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			slog.Info("analysis loop shutting down")
			return
		case <-ticker.C:
			m.runLogged(ctx, "interval")
		case <-m.trigger:
			m.runLogged(ctx, "trigger")
		}
	}
}

func (m *Manager) runLogged(ctx context.Context, reason string) {
	if _, err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
		slog.Error("analysis run failed", "reason", reason, "error", err)
	}
}

// Trigger requests a re-analysis without waiting for it. Requests made while
// one is already pending are coalesced.
func (m *Manager) Trigger() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Latest returns the result of the last completed run, or nil before the
// first run finishes.
func (m *Manager) Latest() *analysis.Result {
	return m.latest.Load()
}

// RunOnce analyzes the current repository contents and publishes the result.
// Runs are serialized so the published result is always from the most
// recently completed run.
func (m *Manager) RunOnce(ctx context.Context) (*analysis.Result, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	snap, err := m.snapshot(ctx)
	if err != nil {
		metrics.ObserveFailure("error")
		return nil, err
	}

	start := time.Now()
	res, err := analysis.Analyze(ctx, snap, analysis.WithWorkers(m.cfg.Analysis.Workers))
	elapsed := time.Since(start)
	if err != nil {
		var cfgErr *analysis.ConfigError
		if errors.As(err, &cfgErr) {
			metrics.ObserveFailure("config_error")
		} else {
			metrics.ObserveFailure("error")
		}
		return nil, err
	}

	prev := m.latest.Swap(res)
	metrics.ObserveResult(res, elapsed)

	sum := res.Summary()
	record := repository.RunRecord{
		ID:              res.RunID,
		GeneratedAt:     res.GeneratedAt,
		Duration:        elapsed,
		Hospitals:       len(snap.Hospitals),
		Critical:        sum.CriticalShortages,
		Warning:         sum.WarningShortages,
		Transfers:       sum.Transfers,
		SupplierOptions: sum.SupplierOptions,
		Unmitigated:     sum.Unmitigated,
	}
	if err := m.repo.RecordRun(ctx, record); err != nil {
		slog.Error("error recording analysis run", "run_id", res.RunID, "error", err)
	}

	m.publish(prev, res, snap.Hospitals)

	slog.Info("analysis complete",
		"run_id", res.RunID,
		"hospitals", len(snap.Hospitals),
		"critical", sum.CriticalShortages,
		"warning", sum.WarningShortages,
		"transfers", sum.Transfers,
		"unmitigated", sum.Unmitigated,
		"duration", elapsed,
	)
	return res, nil
}

func (m *Manager) snapshot(ctx context.Context) (analysis.Snapshot, error) {
	hospitals, err := m.repo.ListHospitals(ctx)
	if err != nil {
		return analysis.Snapshot{}, fmt.Errorf("error loading hospitals: %w", err)
	}
	statuses, err := m.repo.ResourceStatus(ctx)
	if err != nil {
		return analysis.Snapshot{}, fmt.Errorf("error loading resource status: %w", err)
	}

	return analysis.Snapshot{
		Hospitals:           hospitals,
		ResourceStatus:      statuses,
		MinimumLevels:       m.levels,
		MaxTransferDistance: m.cfg.Analysis.MaxTransferDistanceKm,
		Suppliers:           m.repo,
	}, nil
}

type shortageKey struct {
	hospitalID   string
	resourceType string
}

// publish broadcasts critical shortages that were not critical in prev.
func (m *Manager) publish(prev, res *analysis.Result, hospitals []models.Hospital) {
	if m.broadcaster == nil {
		return
	}

	wasCritical := make(map[shortageKey]bool)
	if prev != nil {
		for _, s := range prev.CriticalShortages {
			if s.Severity == models.SeverityCritical {
				wasCritical[shortageKey{s.HospitalID, s.ResourceType}] = true
			}
		}
	}

	unmitigated := make(map[shortageKey]bool)
	for _, s := range res.Unmitigated() {
		unmitigated[shortageKey{s.HospitalID, s.ResourceType}] = true
	}

	names := make(map[string]string, len(hospitals))
	for _, h := range hospitals {
		names[h.ID] = h.Name
	}

	for _, s := range res.CriticalShortages {
		key := shortageKey{s.HospitalID, s.ResourceType}
		if s.Severity != models.SeverityCritical || wasCritical[key] {
			continue
		}
		m.broadcaster.Broadcast(models.ShortageAlert{
			RunID:        res.RunID.String(),
			HospitalName: names[s.HospitalID],
			Shortage:     s,
			Mitigated:    s.Category == models.CategoryEquipment && !unmitigated[key],
			DetectedAt:   res.GeneratedAt,
		})
	}
}

func (m *Manager) Stop() {
	m.wg.Wait()
	slog.Info("analysis manager stopped")
}
