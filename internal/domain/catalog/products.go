package catalog

import (
	"context"
	"errors"
	"strings"

	"zaafa/internal/params"
)

// ProductFilter is the caller-facing listing request. Zero Page/Limit take the defaults.
type ProductFilter struct {
	Page       int
	Limit      int
	CategoryID string
	BrandID    string
	Search     string
	Status     *Status
}

type ProductPage struct {
	Products   []*ProductView    `json:"products"`
	TotalPages int               `json:"totalPages"`
	Pagination params.Pagination `json:"pagination"`
}

type ProductInput struct {
	Name        string
	Price       float64
	Description *string
	Images      []string
	CategoryID  string
	BrandID     string
	OfferID     *string
}

// ProductUpdate replaces only the non-nil fields. An empty OfferID clears the offer.
// Images, when non-nil, is the complete new image list.
type ProductUpdate struct {
	Name        *string
	Price       *float64
	Description *string
	Images      []string
	CategoryID  *string
	BrandID     *string
	OfferID     *string
}

// ListProducts returns one page of products with references resolved.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter, audience Audience) (*ProductPage, error) {
	page := params.New(f.Page, f.Limit)

	q := ProductQuery{
		Audience:   audience,
		CategoryID: strings.TrimSpace(f.CategoryID),
		BrandID:    strings.TrimSpace(f.BrandID),
		Search:     strings.TrimSpace(f.Search),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if audience == AudienceAdmin && f.Status != nil {
		if !f.Status.Valid() {
			return nil, invalid("status must be one of active, blocked")
		}
		q.Status = f.Status
	}

	items, total, err := s.store.ListProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	s.finish(items, audience)

	page.ComputeMeta(total)
	if items == nil {
		items = []*ProductView{}
	}
	return &ProductPage{Products: items, TotalPages: page.TotalPages, Pagination: page}, nil
}

// GetProduct resolves a single product regardless of status.
func (s *Service) GetProduct(ctx context.Context, id string) (*ProductView, error) {
	v, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.finish([]*ProductView{v}, AudienceAdmin)
	return v, nil
}

// RelatedProducts lists public products sharing the category of id.
func (s *Service) RelatedProducts(ctx context.Context, id string, limit int) ([]*ProductView, error) {
	v, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	page := params.New(1, limit)
	items, _, err := s.store.ListProducts(ctx, ProductQuery{
		Audience:   AudiencePublic,
		CategoryID: v.CategoryID,
		ExcludeID:  v.ID,
		Limit:      page.Limit,
	})
	if err != nil {
		return nil, err
	}
	s.finish(items, AudiencePublic)
	if items == nil {
		items = []*ProductView{}
	}
	return items, nil
}

// finish drops offers that are not in effect for the storefront and fills
// in the effective price.
func (s *Service) finish(items []*ProductView, audience Audience) {
	now := s.now()
	for _, v := range items {
		if audience == AudiencePublic && !v.Offer.InEffect(now) {
			v.Offer = nil
		}
		v.EffectivePrice = EffectivePrice(v.Price, v.Offer, now)
	}
}

func (s *Service) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("query is required")
	}
	res, err := s.store.SearchNames(ctx, query)
	if err != nil {
		return nil, err
	}
	if res.Categories == nil {
		res.Categories = []SearchHit{}
	}
	if res.Products == nil {
		res.Products = []SearchHit{}
	}
	return res, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*ProductView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("product name is required")
	}
	if in.Price < 0 {
		return nil, invalid("price cannot be negative")
	}
	if len(in.Images) != ProductImageCount {
		return nil, invalid("exactly %d images are required, got %d", ProductImageCount, len(in.Images))
	}

	p := &Product{
		Name:        name,
		Price:       in.Price,
		Description: optionalText(in.Description),
		Images:      in.Images,
		CategoryID:  strings.TrimSpace(in.CategoryID),
		BrandID:     strings.TrimSpace(in.BrandID),
		OfferID:     optionalText(in.OfferID),
		Status:      StatusActive,
	}
	if err := s.checkReferences(ctx, p); err != nil {
		return nil, err
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductUpdate) (*ProductView, error) {
	v, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p := v.Product

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("product name is required")
		}
		p.Name = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, invalid("price cannot be negative")
		}
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = optionalText(in.Description)
	}
	if in.Images != nil {
		if len(in.Images) != ProductImageCount {
			return nil, invalid("exactly %d images are required, got %d", ProductImageCount, len(in.Images))
		}
		p.Images = in.Images
	}
	if in.CategoryID != nil {
		p.CategoryID = strings.TrimSpace(*in.CategoryID)
	}
	if in.BrandID != nil {
		p.BrandID = strings.TrimSpace(*in.BrandID)
	}
	if in.OfferID != nil {
		p.OfferID = optionalText(in.OfferID)
	}
	if err := s.checkReferences(ctx, &p); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProduct(ctx, &p); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *Service) SetProductStatus(ctx context.Context, id string, status Status) (*Product, error) {
	if !status.Valid() {
		return nil, invalid("status must be one of active, blocked")
	}
	return s.store.SetProductStatus(ctx, id, status)
}

// checkReferences verifies that the category, brand and optional offer exist.
// Their status is not checked; the storefront filters inactive ones at query time.
func (s *Service) checkReferences(ctx context.Context, p *Product) error {
	if p.CategoryID == "" {
		return invalid("category is required")
	}
	if p.BrandID == "" {
		return invalid("brand is required")
	}
	if _, err := s.store.GetCategory(ctx, p.CategoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("category %s does not exist", p.CategoryID)
		}
		return err
	}
	if _, err := s.store.GetBrand(ctx, p.BrandID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("brand %s does not exist", p.BrandID)
		}
		return err
	}
	if p.OfferID != nil {
		if _, err := s.store.GetOffer(ctx, *p.OfferID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return invalid("offer %s does not exist", *p.OfferID)
			}
			return err
		}
	}
	return nil
}
