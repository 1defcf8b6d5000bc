package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/geo"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

func (s *SQLiteDB) UpsertHospital(ctx context.Context, h *models.Hospital) error {
	if h.ID == "" {
		return fmt.Errorf("hospital id is required")
	}
	if err := geo.ValidateCoordinates(h.Latitude, h.Longitude); err != nil {
		return fmt.Errorf("hospital %s: %w", h.ID, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hospitals (id, name, latitude, longitude)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude`,
		h.ID, h.Name, h.Latitude, h.Longitude,
	)
	if err != nil {
		return fmt.Errorf("error upserting hospital %s: %w", h.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	var h models.Hospital
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, latitude, longitude FROM hospitals WHERE id = ?`, id,
	).Scan(&h.ID, &h.Name, &h.Latitude, &h.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hospital %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting hospital %s: %w", id, err)
	}
	return &h, nil
}

// ListHospitals returns hospitals in insertion order.
func (s *SQLiteDB) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, latitude, longitude FROM hospitals ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("error listing hospitals: %w", err)
	}
	defer rows.Close()

	var hospitals []models.Hospital
	for rows.Next() {
		var h models.Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Latitude, &h.Longitude); err != nil {
			return nil, fmt.Errorf("error scanning hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}

func (s *SQLiteDB) SetEquipmentStatus(ctx context.Context, hospitalID, resourceType string, st models.EquipmentStatus) error {
	if st.Available < 0 || st.Total < 0 || st.Available > st.Total {
		return fmt.Errorf("%w: available %d of total %d", ErrInvalidStatus, st.Available, st.Total)
	}
	if err := s.requireHospital(ctx, hospitalID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO equipment_status (hospital_id, resource_type, available, total, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hospital_id, resource_type) DO UPDATE SET
			available = excluded.available,
			total = excluded.total,
			updated_at = excluded.updated_at`,
		hospitalID, resourceType, st.Available, st.Total, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error setting equipment %s for %s: %w", resourceType, hospitalID, err)
	}
	return nil
}

func (s *SQLiteDB) SetSupplyStatus(ctx context.Context, hospitalID, resourceType string, st models.SupplyStatus) error {
	if st.Normal < 0 || st.CriticalLow < 0 {
		return fmt.Errorf("%w: normal %d, critical low %d", ErrInvalidStatus, st.Normal, st.CriticalLow)
	}
	if err := s.requireHospital(ctx, hospitalID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO supply_status (hospital_id, resource_type, normal, critical_low, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hospital_id, resource_type) DO UPDATE SET
			normal = excluded.normal,
			critical_low = excluded.critical_low,
			updated_at = excluded.updated_at`,
		hospitalID, resourceType, st.Normal, st.CriticalLow, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error setting supply %s for %s: %w", resourceType, hospitalID, err)
	}
	return nil
}

// ResourceStatus returns a copy of every hospital's counts. Hospitals with no
// rows at all are absent from the map.
func (s *SQLiteDB) ResourceStatus(ctx context.Context) (map[string]models.ResourceStatus, error) {
	statuses := make(map[string]models.ResourceStatus)

	get := func(id string) models.ResourceStatus {
		st, ok := statuses[id]
		if !ok {
			st = models.ResourceStatus{
				Equipment: make(map[string]models.EquipmentStatus),
				Supplies:  make(map[string]models.SupplyStatus),
			}
			statuses[id] = st
		}
		return st
	}

	rows, err := s.db.QueryContext(ctx, `SELECT hospital_id, resource_type, available, total FROM equipment_status`)
	if err != nil {
		return nil, fmt.Errorf("error reading equipment status: %w", err)
	}
	for rows.Next() {
		var (
			id, resourceType string
			e                models.EquipmentStatus
		)
		if err := rows.Scan(&id, &resourceType, &e.Available, &e.Total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning equipment status: %w", err)
		}
		get(id).Equipment[resourceType] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT hospital_id, resource_type, normal, critical_low FROM supply_status`)
	if err != nil {
		return nil, fmt.Errorf("error reading supply status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, resourceType string
			sup              models.SupplyStatus
		)
		if err := rows.Scan(&id, &resourceType, &sup.Normal, &sup.CriticalLow); err != nil {
			return nil, fmt.Errorf("error scanning supply status: %w", err)
		}
		get(id).Supplies[resourceType] = sup
	}

	return statuses, rows.Err()
}

func (s *SQLiteDB) requireHospital(ctx context.Context, id string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM hospitals WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking hospital %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("hospital %s: %w", id, ErrNotFound)
	}
	return nil
}
