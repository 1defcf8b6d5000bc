// Package analysis detects equipment and supply shortages across a hospital
// network and proposes inter-hospital transfers or external suppliers.
//
// Analyze is a pure computation over a Snapshot: it performs no I/O of its own
// (apart from the injected SupplierRegistry) and keeps no state between calls.
package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/geo"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/worker"
)

// DefaultMaxTransferDistance is used when a Snapshot leaves MaxTransferDistance unset.
const DefaultMaxTransferDistance = 50.0

// Snapshot is the immutable input of one analysis pass. Callers that read
// from live data must copy it before calling Analyze.
type Snapshot struct {
	Hospitals           []models.Hospital
	ResourceStatus      map[string]models.ResourceStatus
	MinimumLevels       models.MinimumLevels
	MaxTransferDistance float64 // km
	Suppliers           SupplierRegistry
}

type options struct {
	workers int
	now     func() time.Time
}

type Option func(*options)

// WithWorkers bounds how many hospitals are analyzed concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

type hospitalResult struct {
	shortages []models.CriticalShortage
	transfers []models.TransferRecommendation
	suppliers []models.SupplierRecommendation
}

// Analyze classifies every hospital, routes critical equipment shortages to the
// nearest donor and falls back to suppliers when no donor qualifies.
func Analyze(ctx context.Context, snap Snapshot, opts ...Option) (*Result, error) {
	o := options{
		workers: runtime.GOMAXPROCS(0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	maxDistance := snap.MaxTransferDistance
	if maxDistance <= 0 {
		maxDistance = DefaultMaxTransferDistance
	}

	// runCtx is cancelled on the first failing hospital; jobs still queued are skipped.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		firstErr error
		errOnce  sync.Once
	)
	results := make([]hospitalResult, len(snap.Hospitals))
	processor := func(ctx context.Context, job worker.Job) error {
		if ctx.Err() != nil {
			return nil
		}
		i := job.(int)
		r, err := analyzeHospital(ctx, snap, snap.Hospitals[i], maxDistance)
		if err != nil {
			errOnce.Do(func() { firstErr = err })
			cancel()
			return err
		}
		results[i] = r
		return nil
	}

	workers := min(o.workers, len(snap.Hospitals))
	pool := worker.NewPool(workers, len(snap.Hospitals), processor)
	pool.Start(runCtx)

	var submitErr error
	for i := range snap.Hospitals {
		if submitErr = pool.Submit(runCtx, i); submitErr != nil {
			break
		}
	}
	pool.Stop()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if submitErr != nil {
		return nil, submitErr
	}

	res := &Result{
		RunID:                   uuid.New(),
		GeneratedAt:             o.now(),
		MaxTransferDistance:     maxDistance,
		CriticalShortages:       []models.CriticalShortage{},
		TransferRecommendations: []models.TransferRecommendation{},
		SupplierRecommendations: []models.SupplierRecommendation{},
	}
	for _, r := range results {
		res.CriticalShortages = append(res.CriticalShortages, r.shortages...)
		res.TransferRecommendations = append(res.TransferRecommendations, r.transfers...)
		res.SupplierRecommendations = append(res.SupplierRecommendations, r.suppliers...)
	}
	return res, nil
}

func analyzeHospital(ctx context.Context, snap Snapshot, hospital models.Hospital, maxDistance float64) (hospitalResult, error) {
	var r hospitalResult

	status, ok := snap.ResourceStatus[hospital.ID]
	if !ok {
		return r, nil
	}

	shortages, err := ClassifyShortages(hospital.ID, &status, snap.MinimumLevels)
	if err != nil {
		return r, fmt.Errorf("error classifying hospital %s: %w", hospital.ID, err)
	}
	r.shortages = shortages

	// Only equipment is transferable; supply shortages are reported as-is.
	for _, s := range shortages {
		if s.Category != models.CategoryEquipment || s.Severity != models.SeverityCritical {
			continue
		}

		candidates := FindNeighbors(hospital, s.ResourceType, snap.Hospitals, snap.ResourceStatus, maxDistance)
		if rec, ok := RecommendTransfer(s, hospital, candidates); ok {
			r.transfers = append(r.transfers, *rec)
			continue
		}

		recs, err := MatchSuppliers(ctx, hospital, s.ResourceType, snap.Suppliers, maxDistance)
		if err != nil {
			return r, fmt.Errorf("error matching suppliers for hospital %s: %w", hospital.ID, err)
		}
		r.suppliers = append(r.suppliers, recs...)
	}

	return r, nil
}

func validateSnapshot(snap Snapshot) error {
	seen := make(map[string]bool, len(snap.Hospitals))
	for _, h := range snap.Hospitals {
		if seen[h.ID] {
			return &ConfigError{Field: "hospital id", Value: h.ID, Err: ErrDuplicateHospital}
		}
		seen[h.ID] = true

		if err := geo.ValidateCoordinates(h.Latitude, h.Longitude); err != nil {
			return &ConfigError{Field: "hospital coordinates", Value: h.ID, Err: err}
		}
	}

	for resourceType, rate := range snap.MinimumLevels.Equipment {
		if math.IsNaN(rate) || rate < 0 || rate > 1 {
			return &ConfigError{Field: "equipment minimum level", Value: resourceType, Err: ErrInvalidThreshold}
		}
	}
	for resourceType, level := range snap.MinimumLevels.Supplies {
		if level < 0 {
			return &ConfigError{Field: "supply minimum level", Value: resourceType, Err: ErrInvalidThreshold}
		}
	}

	if math.IsNaN(snap.MaxTransferDistance) || math.IsInf(snap.MaxTransferDistance, 0) {
		return &ConfigError{Field: "max transfer distance", Value: fmt.Sprint(snap.MaxTransferDistance), Err: ErrInvalidThreshold}
	}

	return nil
}
