package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/analysis"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/config"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/repository"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockStore implements repository.Store for testing
type mockStore struct {
	mu        sync.Mutex
	hospitals []models.Hospital
	statuses  map[string]models.ResourceStatus
	suppliers []models.Supplier
	runs      []repository.RunRecord
	listErr   error
}

func newMockStore() *mockStore {
	return &mockStore{
		statuses: make(map[string]models.ResourceStatus),
	}
}

func (m *mockStore) UpsertHospital(ctx context.Context, h *models.Hospital) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hospitals = append(m.hospitals, *h)
	return nil
}

func (m *mockStore) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.hospitals {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Hospital(nil), m.hospitals...), nil
}

func (m *mockStore) SetEquipmentStatus(ctx context.Context, hospitalID, resourceType string, s models.EquipmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.status(hospitalID)
	st.Equipment[resourceType] = s
	return nil
}

func (m *mockStore) SetSupplyStatus(ctx context.Context, hospitalID, resourceType string, s models.SupplyStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.status(hospitalID)
	st.Supplies[resourceType] = s
	return nil
}

func (m *mockStore) status(id string) models.ResourceStatus {
	st, ok := m.statuses[id]
	if !ok {
		st = models.ResourceStatus{
			Equipment: make(map[string]models.EquipmentStatus),
			Supplies:  make(map[string]models.SupplyStatus),
		}
		m.statuses[id] = st
	}
	return st
}

func (m *mockStore) ResourceStatus(ctx context.Context) (map[string]models.ResourceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.ResourceStatus, len(m.statuses))
	for id, st := range m.statuses {
		cp := models.ResourceStatus{
			Equipment: make(map[string]models.EquipmentStatus),
			Supplies:  make(map[string]models.SupplyStatus),
		}
		for k, v := range st.Equipment {
			cp.Equipment[k] = v
		}
		for k, v := range st.Supplies {
			cp.Supplies[k] = v
		}
		out[id] = cp
	}
	return out, nil
}

func (m *mockStore) AddSupplier(ctx context.Context, s *models.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppliers = append(m.suppliers, *s)
	return nil
}

func (m *mockStore) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Supplier(nil), m.suppliers...), nil
}

func (m *mockStore) FindByResourceType(ctx context.Context, resourceType string) ([]models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Supplier
	for _, s := range m.suppliers {
		if s.ResourceType == resourceType {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStore) RecordRun(ctx context.Context, r repository.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, r)
	return nil
}

func (m *mockStore) ListRuns(ctx context.Context, opts repository.Filter) ([]repository.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.RunRecord(nil), m.runs...), nil
}

func (m *mockStore) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			MaxTransferDistanceKm: 50,
			Interval:              time.Hour,
			Workers:               2,
		},
	}
}

// seedNetwork creates H1 short on respirators and H2 ~11 km north with spare ones.
func seedNetwork(t *testing.T, store *mockStore) {
	t.Helper()
	ctx := context.Background()
	store.UpsertHospital(ctx, &models.Hospital{ID: "H1", Name: "Hospital Central", Latitude: 0, Longitude: 0})
	store.UpsertHospital(ctx, &models.Hospital{ID: "H2", Name: "Hospital Norte", Latitude: 0.1, Longitude: 0})
	store.SetEquipmentStatus(ctx, "H1", "respirators", models.EquipmentStatus{Available: 1, Total: 10})
	store.SetEquipmentStatus(ctx, "H2", "respirators", models.EquipmentStatus{Available: 10, Total: 10})
}

func receive(t *testing.T, ch <-chan models.ShortageAlert) models.ShortageAlert {
	t.Helper()
	select {
	case a := <-ch:
		return a
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for alert")
	}
	return models.ShortageAlert{}
}

func TestManager_RunOncePublishesResult(t *testing.T) {
	store := newMockStore()
	seedNetwork(t, store)
	b := stream.NewBroadcaster()
	defer b.Close()

	id, alerts := b.Subscribe(stream.Filter{})
	defer b.Unsubscribe(id)

	mgr := NewManager(testConfig(), store, models.DefaultMinimumLevels(), b)
	if mgr.Latest() != nil {
		t.Fatal("expected no result before first run")
	}

	res, err := mgr.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if mgr.Latest() != res {
		t.Error("expected Latest to return the run's result")
	}
	if len(res.TransferRecommendations) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(res.TransferRecommendations))
	}
	if store.runCount() != 1 {
		t.Errorf("expected 1 recorded run, got %d", store.runCount())
	}
	if store.runs[0].ID != res.RunID {
		t.Errorf("expected recorded run id %s, got %s", res.RunID, store.runs[0].ID)
	}

	a := receive(t, alerts)
	if a.Shortage.HospitalID != "H1" || a.Shortage.ResourceType != "respirators" {
		t.Errorf("unexpected alert: %+v", a.Shortage)
	}
	if a.HospitalName != "Hospital Central" {
		t.Errorf("expected hospital name 'Hospital Central', got '%s'", a.HospitalName)
	}
	if !a.Mitigated {
		t.Error("expected shortage with a transfer to be mitigated")
	}
}

func TestManager_OnlyNewlyCriticalShortagesAreBroadcast(t *testing.T) {
	store := newMockStore()
	seedNetwork(t, store)
	b := stream.NewBroadcaster()
	defer b.Close()

	id, alerts := b.Subscribe(stream.Filter{})
	defer b.Unsubscribe(id)

	mgr := NewManager(testConfig(), store, models.DefaultMinimumLevels(), b)
	ctx := context.Background()

	if _, err := mgr.RunOnce(ctx); err != nil {
		t.Fatalf("first RunOnce failed: %v", err)
	}
	receive(t, alerts)

	// Same state again, then a new supply shortage
	if _, err := mgr.RunOnce(ctx); err != nil {
		t.Fatalf("second RunOnce failed: %v", err)
	}
	select {
	case a := <-alerts:
		t.Fatalf("expected no alert for an unchanged shortage, got %+v", a.Shortage)
	default:
	}

	store.SetSupplyStatus(ctx, "H2", "ppe", models.SupplyStatus{Normal: 3, CriticalLow: 1})
	if _, err := mgr.RunOnce(ctx); err != nil {
		t.Fatalf("third RunOnce failed: %v", err)
	}
	a := receive(t, alerts)
	if a.Shortage.HospitalID != "H2" || a.Shortage.Category != models.CategorySupplies {
		t.Errorf("expected H2 supplies alert, got %+v", a.Shortage)
	}
	if a.Mitigated {
		t.Error("supply shortages are never mitigated")
	}
}

func TestManager_UnmitigatedAlert(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()
	store.UpsertHospital(ctx, &models.Hospital{ID: "H1", Name: "Isolated", Latitude: 0, Longitude: 0})
	store.SetEquipmentStatus(ctx, "H1", "monitors", models.EquipmentStatus{Available: 0, Total: 8})

	b := stream.NewBroadcaster()
	defer b.Close()
	id, alerts := b.Subscribe(stream.Filter{})
	defer b.Unsubscribe(id)

	mgr := NewManager(testConfig(), store, models.DefaultMinimumLevels(), b)
	if _, err := mgr.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	a := receive(t, alerts)
	if a.Mitigated {
		t.Error("expected shortage without donor or supplier to be unmitigated")
	}
}

func TestManager_ConfigErrorKeepsPreviousResult(t *testing.T) {
	store := newMockStore()
	seedNetwork(t, store)
	mgr := NewManager(testConfig(), store, models.DefaultMinimumLevels(), nil)
	ctx := context.Background()

	first, err := mgr.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	store.SetEquipmentStatus(ctx, "H1", "scanners", models.EquipmentStatus{Available: 1, Total: 2})
	_, err = mgr.RunOnce(ctx)

	var cfgErr *analysis.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if mgr.Latest() != first {
		t.Error("expected failed run to leave the previous result in place")
	}
	if store.runCount() != 1 {
		t.Errorf("expected failed run not to be recorded, got %d runs", store.runCount())
	}
}

func TestManager_RepositoryError(t *testing.T) {
	store := newMockStore()
	store.listErr = errors.New("database is locked")
	mgr := NewManager(testConfig(), store, models.DefaultMinimumLevels(), nil)

	if _, err := mgr.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error when hospitals cannot be loaded")
	}
	if mgr.Latest() != nil {
		t.Error("expected no result after failed run")
	}
}

func TestManager_StartTriggerStop(t *testing.T) {
	store := newMockStore()
	seedNetwork(t, store)
	mgr := NewManager(testConfig(), store, models.DefaultMinimumLevels(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	waitForRuns(t, store, 1)

	mgr.Trigger()
	waitForRuns(t, store, 2)

	cancel()

	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("manager.Stop() timed out - possible goroutine leak")
	}
}

func TestManager_ConcurrentRuns(t *testing.T) {
	store := newMockStore()
	seedNetwork(t, store)
	mgr := NewManager(testConfig(), store, models.DefaultMinimumLevels(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := mgr.RunOnce(context.Background()); err != nil {
				t.Errorf("RunOnce failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if store.runCount() != 10 {
		t.Errorf("expected 10 recorded runs, got %d", store.runCount())
	}
	runs, _ := store.ListRuns(context.Background(), repository.Filter{})
	if mgr.Latest().RunID != runs[len(runs)-1].ID {
		t.Error("expected latest result to be the last recorded run")
	}
}

func waitForRuns(t *testing.T, store *mockStore, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for store.runCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %d runs, got %d", n, store.runCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
