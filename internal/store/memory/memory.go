// Package memory is an in-process catalog store used for development and tests.
// Records are copied in and out so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"zaafa/internal/domain/catalog"

	"github.com/google/uuid"
)

type record[T any] struct {
	seq int64
	val T
}

type Store struct {
	mu         sync.RWMutex
	seq        int64
	now        func() time.Time
	categories map[string]*record[catalog.Category]
	brands     map[string]*record[catalog.Brand]
	offers     map[string]*record[catalog.Offer]
	products   map[string]*record[catalog.Product]
	heroImages map[string]*record[catalog.HeroImage]
}

func New() *Store {
	return &Store{
		now:        time.Now,
		categories: make(map[string]*record[catalog.Category]),
		brands:     make(map[string]*record[catalog.Brand]),
		offers:     make(map[string]*record[catalog.Offer]),
		products:   make(map[string]*record[catalog.Product]),
		heroImages: make(map[string]*record[catalog.HeroImage]),
	}
}

// SetClock overrides the timestamp source; tests use it to force equal CreatedAt values.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// sorted returns values newest first, breaking CreatedAt ties by insertion order.
func sorted[T any](m map[string]*record[T], created func(*T) time.Time, keep func(*T) bool) []T {
	recs := make([]*record[T], 0, len(m))
	for _, r := range m {
		if keep == nil || keep(&r.val) {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		ci, cj := created(&recs[i].val), created(&recs[j].val)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return recs[i].seq > recs[j].seq
	})
	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.val
	}
	return out
}

func nameTaken[T any](m map[string]*record[T], name, excludeID string, get func(*T) (string, string)) bool {
	for _, r := range m {
		id, n := get(&r.val)
		if id != excludeID && strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// ---------- Categories ----------

func categoryName(c *catalog.Category) (string, string) { return c.ID, c.Name }
func categoryCreated(c *catalog.Category) time.Time     { return c.CreatedAt }

func (s *Store) CreateCategory(_ context.Context, c *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nameTaken(s.categories, c.Name, "", categoryName) {
		return catalog.ErrDuplicateName
	}
	now := s.now()
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = now, now
	s.categories[c.ID] = &record[catalog.Category]{seq: s.next(), val: *c}
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.categories[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	c := r.val
	return &c, nil
}

func (s *Store) ListCategories(_ context.Context, activeOnly bool) ([]*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals := sorted(s.categories, categoryCreated, func(c *catalog.Category) bool {
		return !activeOnly || c.Status == catalog.StatusActive
	})
	out := make([]*catalog.Category, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.categories[c.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	if nameTaken(s.categories, c.Name, c.ID, categoryName) {
		return catalog.ErrDuplicateName
	}
	c.CreatedAt = r.val.CreatedAt
	c.UpdatedAt = s.now()
	r.val = *c
	return nil
}

func (s *Store) SetCategoryStatus(_ context.Context, id string, status catalog.Status) (*catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.categories[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	r.val.Status = status
	r.val.UpdatedAt = s.now()
	c := r.val
	return &c, nil
}

func (s *Store) CategoryNameTaken(_ context.Context, name, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nameTaken(s.categories, name, excludeID, categoryName), nil
}

// ---------- Brands ----------

func brandName(b *catalog.Brand) (string, string) { return b.ID, b.Name }
func brandCreated(b *catalog.Brand) time.Time     { return b.CreatedAt }

func (s *Store) CreateBrand(_ context.Context, b *catalog.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nameTaken(s.brands, b.Name, "", brandName) {
		return catalog.ErrDuplicateName
	}
	now := s.now()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	s.brands[b.ID] = &record[catalog.Brand]{seq: s.next(), val: *b}
	return nil
}

func (s *Store) GetBrand(_ context.Context, id string) (*catalog.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.brands[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	b := r.val
	return &b, nil
}

func (s *Store) ListBrands(_ context.Context, activeOnly bool) ([]*catalog.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals := sorted(s.brands, brandCreated, func(b *catalog.Brand) bool {
		return !activeOnly || b.Status == catalog.StatusActive
	})
	out := make([]*catalog.Brand, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

func (s *Store) UpdateBrand(_ context.Context, b *catalog.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.brands[b.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	if nameTaken(s.brands, b.Name, b.ID, brandName) {
		return catalog.ErrDuplicateName
	}
	b.CreatedAt = r.val.CreatedAt
	b.UpdatedAt = s.now()
	r.val = *b
	return nil
}

func (s *Store) SetBrandStatus(_ context.Context, id string, status catalog.Status) (*catalog.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.brands[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	r.val.Status = status
	r.val.UpdatedAt = s.now()
	b := r.val
	return &b, nil
}

func (s *Store) BrandNameTaken(_ context.Context, name, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nameTaken(s.brands, name, excludeID, brandName), nil
}

// ---------- Offers ----------

func offerTitle(o *catalog.Offer) (string, string) { return o.ID, o.Title }
func offerCreated(o *catalog.Offer) time.Time      { return o.CreatedAt }

func (s *Store) CreateOffer(_ context.Context, o *catalog.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nameTaken(s.offers, o.Title, "", offerTitle) {
		return catalog.ErrDuplicateName
	}
	now := s.now()
	o.ID = uuid.NewString()
	o.CreatedAt, o.UpdatedAt = now, now
	s.offers[o.ID] = &record[catalog.Offer]{seq: s.next(), val: *o}
	return nil
}

func (s *Store) GetOffer(_ context.Context, id string) (*catalog.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.offers[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	o := r.val
	return &o, nil
}

func (s *Store) ListOffers(_ context.Context, activeOnly bool) ([]*catalog.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals := sorted(s.offers, offerCreated, func(o *catalog.Offer) bool {
		return !activeOnly || o.IsActive
	})
	out := make([]*catalog.Offer, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

func (s *Store) UpdateOffer(_ context.Context, o *catalog.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.offers[o.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	if nameTaken(s.offers, o.Title, o.ID, offerTitle) {
		return catalog.ErrDuplicateName
	}
	o.CreatedAt = r.val.CreatedAt
	o.UpdatedAt = s.now()
	r.val = *o
	return nil
}

func (s *Store) ToggleOffer(_ context.Context, id string) (*catalog.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.offers[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	r.val.IsActive = !r.val.IsActive
	r.val.UpdatedAt = s.now()
	o := r.val
	return &o, nil
}

func (s *Store) OfferTitleTaken(_ context.Context, title, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nameTaken(s.offers, title, excludeID, offerTitle), nil
}

// ---------- Products ----------

func productCreated(p *catalog.Product) time.Time { return p.CreatedAt }

func cloneProduct(p catalog.Product) catalog.Product {
	p.Images = append([]string(nil), p.Images...)
	if p.OfferID != nil {
		id := *p.OfferID
		p.OfferID = &id
	}
	return p
}

func (s *Store) CreateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = &record[catalog.Product]{seq: s.next(), val: cloneProduct(*p)}
	return nil
}

// view resolves references; callers hold the read lock.
func (s *Store) view(p catalog.Product) *catalog.ProductView {
	v := &catalog.ProductView{Product: cloneProduct(p)}
	if r, ok := s.categories[p.CategoryID]; ok {
		c := r.val
		v.Category = &c
	}
	if r, ok := s.brands[p.BrandID]; ok {
		b := r.val
		v.Brand = &b
	}
	if p.OfferID != nil {
		if r, ok := s.offers[*p.OfferID]; ok {
			o := r.val
			v.Offer = &o
		}
	}
	return v
}

func (s *Store) GetProduct(_ context.Context, id string) (*catalog.ProductView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return s.view(r.val), nil
}

func (s *Store) ListProducts(_ context.Context, q catalog.ProductQuery) ([]*catalog.ProductView, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(q.Search)
	vals := sorted(s.products, productCreated, func(p *catalog.Product) bool {
		switch {
		case q.ExcludeID != "" && p.ID == q.ExcludeID:
			return false
		case q.CategoryID != "" && p.CategoryID != q.CategoryID:
			return false
		case q.BrandID != "" && p.BrandID != q.BrandID:
			return false
		case term != "" && !strings.Contains(strings.ToLower(p.Name), term):
			return false
		case q.Status != nil && p.Status != *q.Status:
			return false
		}
		return true
	})

	var matched []*catalog.ProductView
	for _, p := range vals {
		v := s.view(p)
		if q.Audience == catalog.AudiencePublic &&
			(p.Status != catalog.StatusActive || !v.Category.IsActive() || !v.Brand.IsActive()) {
			continue
		}
		matched = append(matched, v)
	}

	total := len(matched)
	if q.Offset >= total {
		return []*catalog.ProductView{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < total {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}

func (s *Store) UpdateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.products[p.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	p.CreatedAt = r.val.CreatedAt
	p.UpdatedAt = s.now()
	r.val = cloneProduct(*p)
	return nil
}

func (s *Store) SetProductStatus(_ context.Context, id string, status catalog.Status) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	r.val.Status = status
	r.val.UpdatedAt = s.now()
	p := cloneProduct(r.val)
	return &p, nil
}

func (s *Store) SearchNames(_ context.Context, term string) (*catalog.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term = strings.ToLower(term)
	res := &catalog.SearchResult{}

	for _, c := range sorted(s.categories, categoryCreated, func(c *catalog.Category) bool {
		return c.Status != catalog.StatusBlocked && strings.Contains(strings.ToLower(c.Name), term)
	}) {
		res.Categories = append(res.Categories, catalog.SearchHit{Type: "category", ID: c.ID, Name: c.Name})
	}

	for _, p := range sorted(s.products, productCreated, func(p *catalog.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term)
	}) {
		hit := catalog.SearchHit{Type: "product", ID: p.ID, Name: p.Name}
		if r, ok := s.categories[p.CategoryID]; ok {
			name := r.val.Name
			hit.Category = &name
		}
		res.Products = append(res.Products, hit)
	}
	return res, nil
}

// ---------- Hero images ----------

func heroCreated(h *catalog.HeroImage) time.Time { return h.CreatedAt }

func (s *Store) CreateHeroImage(_ context.Context, h *catalog.HeroImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = uuid.NewString()
	h.CreatedAt = s.now()
	s.heroImages[h.ID] = &record[catalog.HeroImage]{seq: s.next(), val: *h}
	return nil
}

func (s *Store) ListHeroImages(_ context.Context, activeOnly bool) ([]*catalog.HeroImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals := sorted(s.heroImages, heroCreated, func(h *catalog.HeroImage) bool {
		return !activeOnly || h.IsActive
	})
	out := make([]*catalog.HeroImage, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

func (s *Store) ToggleHeroImage(_ context.Context, id string) (*catalog.HeroImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.heroImages[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	r.val.IsActive = !r.val.IsActive
	h := r.val
	return &h, nil
}
