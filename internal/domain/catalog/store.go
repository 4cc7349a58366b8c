package catalog

import (
	"context"
)

// ProductQuery is the normalized query a Store executes for product listings.
// For AudiencePublic the store returns only active products whose category
// and brand resolve to active records, and Total counts after that filter.
type ProductQuery struct {
	Audience   Audience
	CategoryID string
	BrandID    string
	Search     string
	Status     *Status
	ExcludeID  string
	Limit      int
	Offset     int
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	SetCategoryStatus(ctx context.Context, id string, status Status) (*Category, error)
	CategoryNameTaken(ctx context.Context, name, excludeID string) (bool, error)
}

type BrandStore interface {
	CreateBrand(ctx context.Context, b *Brand) error
	GetBrand(ctx context.Context, id string) (*Brand, error)
	ListBrands(ctx context.Context, activeOnly bool) ([]*Brand, error)
	UpdateBrand(ctx context.Context, b *Brand) error
	SetBrandStatus(ctx context.Context, id string, status Status) (*Brand, error)
	BrandNameTaken(ctx context.Context, name, excludeID string) (bool, error)
}

type OfferStore interface {
	CreateOffer(ctx context.Context, o *Offer) error
	GetOffer(ctx context.Context, id string) (*Offer, error)
	ListOffers(ctx context.Context, activeOnly bool) ([]*Offer, error)
	UpdateOffer(ctx context.Context, o *Offer) error
	ToggleOffer(ctx context.Context, id string) (*Offer, error)
	OfferTitleTaken(ctx context.Context, title, excludeID string) (bool, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*ProductView, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]*ProductView, int, error)
	UpdateProduct(ctx context.Context, p *Product) error
	SetProductStatus(ctx context.Context, id string, status Status) (*Product, error)
	// SearchNames matches categories that are not blocked and all products by name.
	SearchNames(ctx context.Context, term string) (*SearchResult, error)
}

type HeroImageStore interface {
	CreateHeroImage(ctx context.Context, h *HeroImage) error
	ListHeroImages(ctx context.Context, activeOnly bool) ([]*HeroImage, error)
	ToggleHeroImage(ctx context.Context, id string) (*HeroImage, error)
}

// Store is the data access abstraction for the whole catalog. Implemented by
// the postgres, mongo and memory drivers under internal/store.
type Store interface {
	CategoryStore
	BrandStore
	OfferStore
	ProductStore
	HeroImageStore

	Ping(ctx context.Context) error
}
