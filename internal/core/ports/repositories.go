package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// AlignmentRepository persists alignment sessions.
type AlignmentRepository interface {
	Create(ctx context.Context, a *domain.Alignment) error
	Update(ctx context.Context, a *domain.Alignment) error
	GetByID(ctx context.Context, id string) (*domain.Alignment, error)
	List(ctx context.Context) ([]domain.Alignment, error)
	// FindIntersecting returns at most limit alignments whose overlay bounds
	// intersect the box, nearest overlay center to the box center first.
	FindIntersecting(ctx context.Context, box domain.GeoBounds, limit int) ([]domain.Alignment, error)
	Delete(ctx context.Context, id string) error
}
