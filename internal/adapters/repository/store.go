// Package repository defines the catalog store interface and its in-memory implementation.
package repository

import (
	"context"

	"github.com/okian/payscout/internal/domain/model"
)

// Store provides read access to the platform catalog.
type Store interface {
	// Categories returns every category descriptor in catalog order.
	Categories(ctx context.Context) []model.Category

	// Category returns one descriptor or ErrCategoryNotFound.
	Category(ctx context.Context, id string) (model.Category, error)

	// Platforms returns the platforms of a category sorted by rating desc.
	// Returns ErrCategoryNotFound if the category is unknown.
	Platforms(ctx context.Context, categoryID string) ([]model.Platform, error)

	// AllPlatforms returns every platform, category by category.
	AllPlatforms(ctx context.Context) []model.Platform

	// PlatformByName looks a platform up by exact name.
	// Returns ErrPlatformNotFound if no platform carries that name.
	PlatformByName(ctx context.Context, name string) (model.Platform, error)

	// Proofs returns the payment-proof records sorted by rating desc.
	Proofs(ctx context.Context) []model.Proof

	// Count returns the number of platforms in the catalog.
	Count(ctx context.Context) int
}
