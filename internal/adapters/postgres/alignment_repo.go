package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/ports"
)

// AlignmentRepo implements ports.AlignmentRepository with pgx.
//
// Page, pairs, transform and placement are stored as JSONB; the current
// overlay bounds are duplicated into plain columns so intersection queries
// can use the btree index.
type AlignmentRepo struct {
	db *DB
}

// NewAlignmentRepo creates a new AlignmentRepo.
func NewAlignmentRepo(db *DB) *AlignmentRepo {
	return &AlignmentRepo{db: db}
}

const alignmentColumns = `id, name, page, pairs, transform, original_bounds, placement, fit_error_m, created_at, updated_at`

// Create inserts a new alignment.
func (r *AlignmentRepo) Create(ctx context.Context, a *domain.Alignment) error {
	row, err := encodeAlignment(a)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO alignments (`+alignmentColumns+`, north, south, east, west)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, a.ID, a.Name, row.page, row.pairs, row.transform, row.originalBounds, row.placement,
		a.FitError, a.CreatedAt, a.UpdatedAt,
		a.Placement.Bounds.North, a.Placement.Bounds.South, a.Placement.Bounds.East, a.Placement.Bounds.West)
	return err
}

// Update overwrites an existing alignment.
func (r *AlignmentRepo) Update(ctx context.Context, a *domain.Alignment) error {
	row, err := encodeAlignment(a)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE alignments
		SET name = $2, page = $3, pairs = $4, transform = $5, original_bounds = $6,
		    placement = $7, fit_error_m = $8, updated_at = $9,
		    north = $10, south = $11, east = $12, west = $13
		WHERE id = $1
	`, a.ID, a.Name, row.page, row.pairs, row.transform, row.originalBounds, row.placement,
		a.FitError, a.UpdatedAt,
		a.Placement.Bounds.North, a.Placement.Bounds.South, a.Placement.Bounds.East, a.Placement.Bounds.West)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// GetByID returns an alignment by UUID.
func (r *AlignmentRepo) GetByID(ctx context.Context, id string) (*domain.Alignment, error) {
	a, err := scanAlignment(r.db.Pool.QueryRow(ctx, `
		SELECT `+alignmentColumns+` FROM alignments WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns all alignments, most recently updated first.
func (r *AlignmentRepo) List(ctx context.Context) ([]domain.Alignment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+alignmentColumns+` FROM alignments ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectAlignments(rows)
}

// FindIntersecting returns alignments whose current overlay bounds intersect
// box, nearest overlay center to the box center first. The ordering uses an
// equirectangular approximation, which ranks like haversine at these scales.
func (r *AlignmentRepo) FindIntersecting(ctx context.Context, box domain.GeoBounds, limit int) ([]domain.Alignment, error) {
	c := box.Center()
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+alignmentColumns+`
		FROM alignments
		WHERE south <= $1 AND north >= $2 AND west <= $3 AND east >= $4
		ORDER BY power((north + south) / 2 - $6::float8, 2)
		       + power(((east + west) / 2 - $7::float8) * cos(radians($6::float8)), 2),
		         updated_at DESC
		LIMIT $5
	`, box.North, box.South, box.East, box.West, limit, c.Lat, c.Lng)
	if err != nil {
		return nil, err
	}
	return collectAlignments(rows)
}

// Delete removes an alignment.
func (r *AlignmentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM alignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

type alignmentRow struct {
	page, pairs, transform, originalBounds, placement []byte
}

func encodeAlignment(a *domain.Alignment) (alignmentRow, error) {
	var (
		row alignmentRow
		err error
	)
	fields := []struct {
		dst *[]byte
		v   any
	}{
		{&row.page, a.Page},
		{&row.pairs, a.Pairs},
		{&row.transform, a.Transform},
		{&row.originalBounds, a.OriginalBounds},
		{&row.placement, a.Placement},
	}
	for _, f := range fields {
		if *f.dst, err = json.Marshal(f.v); err != nil {
			return alignmentRow{}, fmt.Errorf("encode alignment %s: %w", a.ID, err)
		}
	}
	return row, nil
}

func scanAlignment(row pgx.Row) (*domain.Alignment, error) {
	var (
		a   domain.Alignment
		raw alignmentRow
	)
	if err := row.Scan(
		&a.ID, &a.Name, &raw.page, &raw.pairs, &raw.transform, &raw.originalBounds, &raw.placement,
		&a.FitError, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	fields := []struct {
		src []byte
		v   any
	}{
		{raw.page, &a.Page},
		{raw.pairs, &a.Pairs},
		{raw.transform, &a.Transform},
		{raw.originalBounds, &a.OriginalBounds},
		{raw.placement, &a.Placement},
	}
	for _, f := range fields {
		if err := json.Unmarshal(f.src, f.v); err != nil {
			return nil, fmt.Errorf("decode alignment %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

func collectAlignments(rows pgx.Rows) ([]domain.Alignment, error) {
	defer rows.Close()

	var out []domain.Alignment
	for rows.Next() {
		a, err := scanAlignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
