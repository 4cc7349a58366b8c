package catalog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Cache holds the public storefront lists. Implemented by internal/cache.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	cacheKeyCategories = "catalog:categories:public"
	cacheKeyBrands     = "catalog:brands:public"
	cacheKeyOffers     = "catalog:offers:public"
	cacheKeyHeroImages = "catalog:hero_images:public"
)

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) bool                 { return false }
func (nopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (nopCache) Delete(context.Context, ...string) error               { return nil }

// Service is the catalog query and mutation layer shared by every handler.
type Service struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
	now      func() time.Time
}

type Option func(*Service)

func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithClock replaces time.Now, used by offer windows and effective prices.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, logger *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		cache:    nopCache{},
		cacheTTL: 5 * time.Minute,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// cachedList serves public lists from the cache, falling back to load.
func cachedList[T any](ctx context.Context, s *Service, key string, load func() ([]T, error)) ([]T, error) {
	var cached []T
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	items, err := load()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	if err := s.cache.Set(ctx, key, items, s.cacheTTL); err != nil {
		s.logger.Warnw("cache set failed", "key", key, "error", err)
	}
	return items, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warnw("cache invalidation failed", "keys", keys, "error", err)
	}
}

func cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("%s name is required", kind)
	}
	return name, nil
}

func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// ---------- Categories ----------

type CategoryInput struct {
	Name        string
	Description *string
	Image       *string
}

type CategoryUpdate struct {
	Name        *string
	Description *string
	Image       *string
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	name, err := cleanName("category", in.Name)
	if err != nil {
		return nil, err
	}
	taken, err := s.store.CategoryNameTaken(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicate("category", name)
	}

	c := &Category{
		Name:        name,
		Description: optionalText(in.Description),
		Image:       in.Image,
		Status:      StatusActive,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyCategories)
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context, audience Audience) ([]*Category, error) {
	if audience == AudiencePublic {
		return cachedList(ctx, s, cacheKeyCategories, func() ([]*Category, error) {
			return s.store.ListCategories(ctx, true)
		})
	}
	return s.store.ListCategories(ctx, false)
}

func (s *Service) GetCategory(ctx context.Context, id string, audience Audience) (*Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if audience == AudiencePublic && !c.IsActive() {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryUpdate) (*Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name, err := cleanName("category", *in.Name)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(name, c.Name) {
			taken, err := s.store.CategoryNameTaken(ctx, name, c.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, duplicate("category", name)
			}
		}
		c.Name = name
	}
	if in.Description != nil {
		c.Description = optionalText(in.Description)
	}
	if in.Image != nil {
		c.Image = in.Image
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyCategories)
	return c, nil
}

func (s *Service) SetCategoryStatus(ctx context.Context, id string, status Status) (*Category, error) {
	if !status.Valid() {
		return nil, invalid("status must be one of active, blocked")
	}
	c, err := s.store.SetCategoryStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyCategories)
	return c, nil
}

// ---------- Brands ----------

type BrandInput struct {
	Name  string
	Image string
}

type BrandUpdate struct {
	Name  *string
	Image *string
}

func (s *Service) CreateBrand(ctx context.Context, in BrandInput) (*Brand, error) {
	name, err := cleanName("brand", in.Name)
	if err != nil {
		return nil, err
	}
	if in.Image == "" {
		return nil, invalid("brand image is required")
	}
	taken, err := s.store.BrandNameTaken(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicate("brand", name)
	}

	b := &Brand{Name: name, Image: in.Image, Status: StatusActive}
	if err := s.store.CreateBrand(ctx, b); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyBrands)
	return b, nil
}

func (s *Service) ListBrands(ctx context.Context, audience Audience) ([]*Brand, error) {
	if audience == AudiencePublic {
		return cachedList(ctx, s, cacheKeyBrands, func() ([]*Brand, error) {
			return s.store.ListBrands(ctx, true)
		})
	}
	return s.store.ListBrands(ctx, false)
}

func (s *Service) GetBrand(ctx context.Context, id string, audience Audience) (*Brand, error) {
	b, err := s.store.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	if audience == AudiencePublic && !b.IsActive() {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) UpdateBrand(ctx context.Context, id string, in BrandUpdate) (*Brand, error) {
	b, err := s.store.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name, err := cleanName("brand", *in.Name)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(name, b.Name) {
			taken, err := s.store.BrandNameTaken(ctx, name, b.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, duplicate("brand", name)
			}
		}
		b.Name = name
	}
	if in.Image != nil && *in.Image != "" {
		b.Image = *in.Image
	}
	if err := s.store.UpdateBrand(ctx, b); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyBrands)
	return b, nil
}

func (s *Service) SetBrandStatus(ctx context.Context, id string, status Status) (*Brand, error) {
	if !status.Valid() {
		return nil, invalid("status must be one of active, blocked")
	}
	b, err := s.store.SetBrandStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyBrands)
	return b, nil
}

// ---------- Hero images ----------

func (s *Service) CreateHeroImage(ctx context.Context, imageURL string) (*HeroImage, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, invalid("hero image is required")
	}
	h := &HeroImage{ImageURL: imageURL, IsActive: true}
	if err := s.store.CreateHeroImage(ctx, h); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyHeroImages)
	return h, nil
}

func (s *Service) ListHeroImages(ctx context.Context, audience Audience) ([]*HeroImage, error) {
	if audience == AudiencePublic {
		return cachedList(ctx, s, cacheKeyHeroImages, func() ([]*HeroImage, error) {
			return s.store.ListHeroImages(ctx, true)
		})
	}
	return s.store.ListHeroImages(ctx, false)
}

func (s *Service) ToggleHeroImage(ctx context.Context, id string) (*HeroImage, error) {
	h, err := s.store.ToggleHeroImage(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyHeroImages)
	return h, nil
}
