package repository

import (
	"context"
	"fmt"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/geo"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

func (s *SQLiteDB) AddSupplier(ctx context.Context, sup *models.Supplier) error {
	if sup.ID == "" || sup.ResourceType == "" {
		return fmt.Errorf("supplier id and resource type are required")
	}
	if err := geo.ValidateCoordinates(sup.Latitude, sup.Longitude); err != nil {
		return fmt.Errorf("supplier %s: %w", sup.ID, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, latitude, longitude, resource_type, estimated_price, availability)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sup.ID, sup.Name, sup.Latitude, sup.Longitude, sup.ResourceType, sup.EstimatedPrice, sup.Availability,
	)
	if err != nil {
		return fmt.Errorf("error adding supplier %s: %w", sup.ID, err)
	}
	return nil
}

func (s *SQLiteDB) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.querySuppliers(ctx, `
		SELECT id, name, latitude, longitude, resource_type, estimated_price, availability
		FROM suppliers ORDER BY rowid`)
}

// FindByResourceType returns suppliers of resourceType in registration order.
func (s *SQLiteDB) FindByResourceType(ctx context.Context, resourceType string) ([]models.Supplier, error) {
	return s.querySuppliers(ctx, `
		SELECT id, name, latitude, longitude, resource_type, estimated_price, availability
		FROM suppliers WHERE resource_type = ? ORDER BY rowid`, resourceType)
}

func (s *SQLiteDB) querySuppliers(ctx context.Context, query string, args ...any) ([]models.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []models.Supplier
	for rows.Next() {
		var sup models.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Latitude, &sup.Longitude, &sup.ResourceType, &sup.EstimatedPrice, &sup.Availability); err != nil {
			return nil, fmt.Errorf("error scanning supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}
