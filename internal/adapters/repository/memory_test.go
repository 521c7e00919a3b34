package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/payscout/internal/domain/listing"
	"github.com/smartystreets/goconvey/convey"
)

const smallCatalog = `
categories:
  - id: "surveys"
    name: "Surveys"
    icon: "fas fa-poll"
    color: "hsl(50, 100%, 70%)"
  - id: "empty"
    name: "Nothing Here"
    icon: "fas fa-ban"
    color: "hsl(0, 0%, 50%)"
platforms:
  surveys:
    - name: "Low"
      description: "Low rated"
      requirements: "18+, US only"
      payment_methods: ["PayPal"]
      difficulty: "Beginner"
      url: "https://low.example.com"
      rating: "3.1/5"
      min_cashout: "$10"
    - name: "High"
      description: "High rated"
      requirements: "18+, Global availability"
      payment_methods: ["PayPal", "Bitcoin"]
      difficulty: "Beginner to Intermediate"
      url: "https://high.example.com"
      rating: "4.7/5"
      min_cashout: "$5"
      warning: "Slow support"
proofs:
  - name: "P1"
    category: "Survey/GPT"
    proof_url: "https://img.example.com/p1.png"
    description: "first"
    rating: "4.0/5"
    min_cashout: "$5"
  - name: "P2"
    category: "Passive Income"
    proof_url: "https://img.example.com/p2.png"
    description: "second"
    rating: "4.9/5"
    min_cashout: "$20"
`

func TestMemoryStore_EmbeddedCatalog(t *testing.T) {
	convey.Convey("Given the embedded catalog", t, func() {
		ctx := context.Background()
		store, err := NewMemoryStore(ctx)

		convey.Convey("Then it should load and validate", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(store.Categories(ctx)), convey.ShouldEqual, 11)
			convey.So(store.Count(ctx), convey.ShouldEqual, 80)
			convey.So(len(store.Proofs(ctx)), convey.ShouldEqual, 30)
		})

		convey.Convey("Then every category should be sorted by rating desc", func() {
			for _, c := range store.Categories(ctx) {
				ps, err := store.Platforms(ctx, c.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(ps), convey.ShouldBeGreaterThan, 0)
				for i := 1; i < len(ps); i++ {
					convey.So(listing.ParseRating(ps[i-1].Rating), convey.ShouldBeGreaterThanOrEqualTo, listing.ParseRating(ps[i].Rating))
				}
			}
		})

		convey.Convey("Then proofs should be sorted by rating desc", func() {
			proofs := store.Proofs(ctx)
			for i := 1; i < len(proofs); i++ {
				convey.So(listing.ParseRating(proofs[i-1].Rating), convey.ShouldBeGreaterThanOrEqualTo, listing.ParseRating(proofs[i].Rating))
			}
		})

		convey.Convey("Then platforms should be found by exact name", func() {
			p, err := store.PlatformByName(ctx, "CashInStyle")
			convey.So(err, convey.ShouldBeNil)
			convey.So(p.URL, convey.ShouldStartWith, "https://")

			_, err = store.PlatformByName(ctx, "cashinstyle")
			convey.So(errors.Is(err, ErrPlatformNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestMemoryStore_CatalogData(t *testing.T) {
	convey.Convey("Given a small catalog", t, func() {
		ctx := context.Background()
		store, err := NewMemoryStore(ctx, WithCatalogData([]byte(smallCatalog)))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When listing a category", func() {
			ps, err := store.Platforms(ctx, "surveys")

			convey.Convey("Then it should be sorted with the higher rating first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(ps), convey.ShouldEqual, 2)
				convey.So(ps[0].Name, convey.ShouldEqual, "High")
				convey.So(ps[0].Advisory(), convey.ShouldEqual, "Slow support")
			})
		})

		convey.Convey("When listing a category without platforms", func() {
			ps, err := store.Platforms(ctx, "empty")

			convey.Convey("Then it should be empty and not an error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ps, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When listing an unknown category", func() {
			_, err := store.Platforms(ctx, "nope")
			convey.So(errors.Is(err, ErrCategoryNotFound), convey.ShouldBeTrue)

			_, err = store.Category(ctx, "nope")
			convey.So(errors.Is(err, ErrCategoryNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When mutating a returned slice", func() {
			ps, _ := store.Platforms(ctx, "surveys")
			ps[0].Name = "changed"
			again, _ := store.Platforms(ctx, "surveys")

			convey.Convey("Then the store should be unaffected", func() {
				convey.So(again[0].Name, convey.ShouldEqual, "High")
			})
		})

		convey.Convey("When reading all platforms and proofs", func() {
			convey.So(len(store.AllPlatforms(ctx)), convey.ShouldEqual, 2)
			proofs := store.Proofs(ctx)
			convey.So(proofs[0].Name, convey.ShouldEqual, "P2")
		})
	})
}

func TestMemoryStore_CatalogPath(t *testing.T) {
	convey.Convey("Given a catalog file on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "catalog.yaml")
		convey.So(os.WriteFile(path, []byte(smallCatalog), 0o600), convey.ShouldBeNil)

		store, err := NewMemoryStore(ctx, WithCatalogPath(path))

		convey.Convey("Then it should be loaded instead of the embedded one", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(store.Count(ctx), convey.ShouldEqual, 2)
		})

		convey.Convey("When the file is missing", func() {
			_, err := NewMemoryStore(ctx, WithCatalogPath(filepath.Join(dir, "missing.yaml")))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMemoryStore_InvalidCatalogs(t *testing.T) {
	convey.Convey("Given invalid catalogs", t, func() {
		ctx := context.Background()
		cases := []struct{ name, doc string }{
			{"not yaml", "categories: ["},
			{"unknown field", "categories:\n  - id: a\n    name: A\n    shape: round\n"},
			{"no categories", "platforms: {}\n"},
			{"unknown category", "categories:\n  - id: a\n    name: A\nplatforms:\n  b:\n    - name: X\n"},
			{"bad url", `
categories:
  - id: a
    name: A
platforms:
  a:
    - name: X
      description: d
      difficulty: Beginner
      url: "not a url"
      rating: "4/5"
      min_cashout: "$5"
`},
			{"bad difficulty", `
categories:
  - id: a
    name: A
platforms:
  a:
    - name: X
      description: d
      difficulty: Wizard
      url: "https://x.example.com"
      rating: "4/5"
      min_cashout: "$5"
`},
			{"bad rating", `
categories:
  - id: a
    name: A
platforms:
  a:
    - name: X
      description: d
      difficulty: Beginner
      url: "https://x.example.com"
      rating: "great"
      min_cashout: "$5"
`},
			{"duplicate name", `
categories:
  - id: a
    name: A
  - id: b
    name: B
platforms:
  a:
    - name: X
      description: d
      difficulty: Beginner
      url: "https://x.example.com"
      rating: "4/5"
      min_cashout: "$5"
  b:
    - name: X
      description: d
      difficulty: Beginner
      url: "https://x.example.com"
      rating: "4/5"
      min_cashout: "$5"
`},
			{"duplicate category", "categories:\n  - id: a\n    name: A\n  - id: a\n    name: B\n"},
		}

		for _, tc := range cases {
			_, err := NewMemoryStore(ctx, WithCatalogData([]byte(tc.doc)))

			convey.Convey("Then "+tc.name+" should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, ErrInvalidCatalog), convey.ShouldBeTrue)
			})
		}
	})
}
