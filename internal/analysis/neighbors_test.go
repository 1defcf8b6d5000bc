package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

func TestFindNeighbors_FiltersAndSorts(t *testing.T) {
	source := hospitalAt("H1", 0)
	hospitals := []models.Hospital{
		source,
		hospitalAt("far", 51),
		hospitalAt("mid", 20),
		hospitalAt("near", 5),
		hospitalAt("depleted", 2),
		hospitalAt("nodata", 1),
		hospitalAt("othertype", 3),
		hospitalAt("edge", 50),
	}
	statuses := map[string]models.ResourceStatus{
		"H1":        equipment("respirators", 0, 10),
		"far":       equipment("respirators", 30, 40),
		"mid":       equipment("respirators", 20, 40),
		"near":      equipment("respirators", 3, 10),
		"depleted":  equipment("respirators", 29, 100),
		"othertype": equipment("monitors", 10, 10),
		"edge":      equipment("respirators", 10, 10),
	}

	got := FindNeighbors(source, "respirators", hospitals, statuses, 50.0001)

	var ids []string
	for _, c := range got {
		ids = append(ids, c.Hospital.ID)
		assert.NotEqual(t, source.ID, c.Hospital.ID)
		assert.GreaterOrEqual(t, c.Status.AvailabilityRate(), DonorMinimumRate)
		assert.InDelta(t, c.Distance/50*60, c.EstimatedTime, 1e-9)
	}
	assert.Equal(t, []string{"near", "mid", "edge"}, ids)
	assert.InDelta(t, 5.0, got[0].Distance, 1e-6)
}

func TestFindNeighbors_StableTieBreak(t *testing.T) {
	source := models.Hospital{ID: "H1", Latitude: baseLat, Longitude: 0}
	east := models.Hospital{ID: "east", Latitude: baseLat, Longitude: 0.1}
	west := models.Hospital{ID: "west", Latitude: baseLat, Longitude: -0.1}
	statuses := map[string]models.ResourceStatus{
		"east": equipment("monitors", 5, 10),
		"west": equipment("monitors", 5, 10),
	}

	got := FindNeighbors(source, "monitors", []models.Hospital{source, west, east}, statuses, 50)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].Distance, got[1].Distance)
	assert.Equal(t, "west", got[0].Hospital.ID)
	assert.Equal(t, "east", got[1].Hospital.ID)

	got = FindNeighbors(source, "monitors", []models.Hospital{east, source, west}, statuses, 50)
	require.Len(t, got, 2)
	assert.Equal(t, "east", got[0].Hospital.ID)
	assert.Equal(t, "west", got[1].Hospital.ID)
}

func TestFindNeighbors_ZeroTotalNotADonor(t *testing.T) {
	source := hospitalAt("H1", 0)
	hospitals := []models.Hospital{source, hospitalAt("H2", 5)}
	statuses := map[string]models.ResourceStatus{
		"H2": equipment("respirators", 0, 0),
	}

	assert.Empty(t, FindNeighbors(source, "respirators", hospitals, statuses, 50))
}

func TestRecommendTransfer_NoCandidates(t *testing.T) {
	rec, ok := RecommendTransfer(models.CriticalShortage{ResourceType: "respirators"}, hospitalAt("H1", 0), nil)
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestRecommendTransfer_PrimaryAndAlternatives(t *testing.T) {
	target := hospitalAt("H1", 0)
	hospitals := []models.Hospital{target}
	statuses := map[string]models.ResourceStatus{}
	for i, km := range []float64{30, 10, 40, 20} {
		h := hospitalAt(string(rune('A'+i)), km)
		hospitals = append(hospitals, h)
		statuses[h.ID] = equipment("respirators", 20+i, 40)
	}
	candidates := FindNeighbors(target, "respirators", hospitals, statuses, 50)
	require.Len(t, candidates, 4)

	shortage := models.CriticalShortage{
		HospitalID:   "H1",
		ResourceType: "respirators",
		Category:     models.CategoryEquipment,
		Severity:     models.SeverityCritical,
	}
	rec, ok := RecommendTransfer(shortage, target, candidates)
	require.True(t, ok)

	assert.Equal(t, "B", rec.SourceHospitalID)
	assert.Equal(t, "H1", rec.TargetHospitalID)
	assert.Equal(t, "respirators", rec.ResourceType)
	assert.Equal(t, 4, rec.Quantity) // floor(21 * 0.2)
	assert.Equal(t, models.TransferPriorityHigh, rec.Priority)
	assert.InDelta(t, 10.0, rec.Distance, 1e-6)
	assert.InDelta(t, 12.0, rec.EstimatedTime, 1e-6)
	assert.Equal(t, models.TrafficLow, rec.RouteDetails.TrafficLevel)

	assert.Equal(t, candidates[0].Hospital.Coordinates(), rec.RouteDetails.Coordinates[0])
	assert.Equal(t, target.Coordinates(), rec.RouteDetails.Coordinates[1])

	alts := rec.RouteDetails.AlternativeRoutes
	require.Len(t, alts, 2)
	assert.Equal(t, "D", alts[0].HospitalID)
	assert.Equal(t, "A", alts[1].HospitalID)
	assert.InDelta(t, 20.0, alts[0].Distance, 1e-6)
	assert.InDelta(t, 24.0, alts[0].EstimatedTime, 1e-6)
	assert.Equal(t, target.Coordinates(), alts[0].Coordinates[1])
}

func TestTransferQuantity(t *testing.T) {
	for available := 0; available <= 500; available++ {
		want := int(math.Floor(float64(available) * 0.2))
		assert.Equal(t, want, transferQuantity(available), "available=%d", available)
	}
	assert.Equal(t, 0, transferQuantity(-3))
}

func TestTrafficLevel(t *testing.T) {
	assert.Equal(t, models.TrafficLow, trafficLevel(30, 36))
	assert.Equal(t, models.TrafficHigh, trafficLevel(10, 21))
	assert.Equal(t, models.TrafficLow, trafficLevel(10, 20))
}
