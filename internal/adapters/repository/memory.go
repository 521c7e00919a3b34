package repository

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/payscout/internal/domain/listing"
	"github.com/okian/payscout/internal/domain/model"
	"github.com/okian/payscout/pkg/metrics"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// catalogFile is the on-disk catalog layout.
type catalogFile struct {
	Categories []model.Category            `yaml:"categories"`
	Platforms  map[string][]model.Platform `yaml:"platforms"`
	Proofs     []model.Proof               `yaml:"proofs"`
}

// MemoryStore serves an immutable catalog loaded once at construction.
// Every list is sorted by rating at load so reads never sort.
type MemoryStore struct {
	path string
	raw  []byte

	categories []model.Category
	byCategory map[string][]model.Platform
	byName     map[string]model.Platform
	all        []model.Platform
	proofs     []model.Proof
}

// NewMemoryStore loads, validates and indexes the catalog.
// The embedded catalog is used unless WithCatalogPath or WithCatalogData is given.
func NewMemoryStore(ctx context.Context, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}

	data, err := s.source()
	if err != nil {
		return nil, err
	}

	cat, err := decodeCatalog(data)
	if err != nil {
		return nil, err
	}
	if err := validateCatalog(cat); err != nil {
		return nil, err
	}

	s.index(cat)
	s.reportMetrics(ctx)
	return s, nil
}

func (s *MemoryStore) source() ([]byte, error) {
	switch {
	case s.raw != nil:
		return s.raw, nil
	case s.path != "":
		data, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
		}
		return data, nil
	default:
		return embeddedCatalog, nil
	}
}

func decodeCatalog(data []byte) (*catalogFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cat catalogFile
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return &cat, nil
}

func validateCatalog(cat *catalogFile) error {
	if len(cat.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	v := model.NewValidator()
	ids := make(map[string]struct{}, len(cat.Categories))
	for i, c := range cat.Categories {
		if err := v.Validate(c); err != nil {
			return fmt.Errorf("%w: category #%d: %w", ErrInvalidCatalog, i, err)
		}
		if _, dup := ids[c.ID]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, c.ID)
		}
		ids[c.ID] = struct{}{}
	}

	names := make(map[string]string)
	for id, ps := range cat.Platforms {
		if _, ok := ids[id]; !ok {
			return fmt.Errorf("%w: platforms listed under unknown category %q", ErrInvalidCatalog, id)
		}
		for _, p := range ps {
			if err := v.Validate(p); err != nil {
				return fmt.Errorf("%w: platform %q in %s: %w", ErrInvalidCatalog, p.Name, id, err)
			}
			if prev, dup := names[p.Name]; dup {
				return fmt.Errorf("%w: platform %q listed in both %s and %s", ErrInvalidCatalog, p.Name, prev, id)
			}
			names[p.Name] = id
		}
	}

	for _, p := range cat.Proofs {
		if err := v.Validate(p); err != nil {
			return fmt.Errorf("%w: proof %q: %w", ErrInvalidCatalog, p.Name, err)
		}
	}
	return nil
}

func (s *MemoryStore) index(cat *catalogFile) {
	s.categories = cat.Categories
	s.byCategory = make(map[string][]model.Platform, len(cat.Categories))
	s.byName = make(map[string]model.Platform)
	s.all = nil

	for _, c := range cat.Categories {
		sorted := listing.SortByRating(cat.Platforms[c.ID])
		s.byCategory[c.ID] = sorted
		s.all = append(s.all, sorted...)
		for _, p := range sorted {
			s.byName[p.Name] = p
		}
	}
	s.proofs = listing.SortByRating(cat.Proofs)
}

func (s *MemoryStore) reportMetrics(_ context.Context) {
	metrics.UpdateCatalogCategories(len(s.categories))
	for id, ps := range s.byCategory {
		metrics.UpdateCatalogPlatforms(id, len(ps))
	}
	metrics.UpdateCatalogProofs(len(s.proofs))
	metrics.MarkCatalogLoaded(time.Now())
}

// Categories returns every category descriptor in catalog order.
func (s *MemoryStore) Categories(_ context.Context) []model.Category {
	return append([]model.Category(nil), s.categories...)
}

// Category returns one descriptor or ErrCategoryNotFound.
func (s *MemoryStore) Category(_ context.Context, id string) (model.Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	metrics.RecordErrorByComponent("repository", "category_not_found")
	return model.Category{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
}

// Platforms returns the platforms of a category sorted by rating desc.
// A known category without platforms yields an empty list.
func (s *MemoryStore) Platforms(ctx context.Context, categoryID string) ([]model.Platform, error) {
	if _, err := s.Category(ctx, categoryID); err != nil {
		return nil, err
	}
	return append([]model.Platform{}, s.byCategory[categoryID]...), nil
}

// AllPlatforms returns every platform, category by category.
func (s *MemoryStore) AllPlatforms(_ context.Context) []model.Platform {
	return append([]model.Platform(nil), s.all...)
}

// PlatformByName looks a platform up by exact name.
func (s *MemoryStore) PlatformByName(_ context.Context, name string) (model.Platform, error) {
	p, ok := s.byName[name]
	if !ok {
		metrics.RecordErrorByComponent("repository", "platform_not_found")
		return model.Platform{}, fmt.Errorf("%w: %s", ErrPlatformNotFound, name)
	}
	return p, nil
}

// Proofs returns the payment-proof records sorted by rating desc.
func (s *MemoryStore) Proofs(_ context.Context) []model.Proof {
	return append([]model.Proof(nil), s.proofs...)
}

// Count returns the number of platforms in the catalog.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.all)
}

var _ Store = (*MemoryStore)(nil)
