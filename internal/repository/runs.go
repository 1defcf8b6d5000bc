package repository

import (
	"context"
	"fmt"
	"time"
)

func (s *SQLiteDB) RecordRun(ctx context.Context, r RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, generated_at, duration_ns, hospitals, critical, warning, transfers, supplier_options, unmitigated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.GeneratedAt.UnixMilli(), int64(r.Duration), r.Hospitals,
		r.Critical, r.Warning, r.Transfers, r.SupplierOptions, r.Unmitigated,
	)
	if err != nil {
		return fmt.Errorf("error recording run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns runs newest first.
func (s *SQLiteDB) ListRuns(ctx context.Context, opts Filter) ([]RunRecord, error) {
	query := `
		SELECT id, generated_at, duration_ns, hospitals, critical, warning, transfers, supplier_options, unmitigated
		FROM analysis_runs`
	var args []any

	if opts.Since != nil {
		query += " WHERE generated_at >= ?"
		args = append(args, opts.Since.UnixMilli())
	}
	query += " ORDER BY generated_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			r           RunRecord
			id          string
			generatedAt int64
			duration    int64
		)
		if err := rows.Scan(&id, &generatedAt, &duration, &r.Hospitals, &r.Critical, &r.Warning, &r.Transfers, &r.SupplierOptions, &r.Unmitigated); err != nil {
			return nil, fmt.Errorf("error scanning run: %w", err)
		}
		if err := r.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("error parsing run id %q: %w", id, err)
		}
		r.GeneratedAt = time.UnixMilli(generatedAt)
		r.Duration = time.Duration(duration)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
