package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaafa/internal/domain/catalog"
)

func seedProduct(t *testing.T, s *Store, name, categoryID, brandID string) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:       name,
		Price:      10,
		Images:     []string{"a", "b", "c", "d"},
		CategoryID: categoryID,
		BrandID:    brandID,
		Status:     catalog.StatusActive,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func TestListNewestFirstWithTies(t *testing.T) {
	ctx := context.Background()
	s := New()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, s.CreateCategory(ctx, &catalog.Category{Name: name, Status: catalog.StatusActive}))
	}

	got, err := s.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestNameTakenIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := &catalog.Category{Name: "Shoes", Status: catalog.StatusActive}
	require.NoError(t, s.CreateCategory(ctx, c))

	taken, err := s.CategoryNameTaken(ctx, "SHOES", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.CategoryNameTaken(ctx, "shoes", c.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a record never collides with itself")
}

func TestProductCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, "Runner", "c", "b")
	p.Images[0] = "mutated"

	v, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Images[0])

	v.Images[1] = "mutated"
	again, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", again.Images[1])
}

func TestListProductsPublicCountsAfterJoin(t *testing.T) {
	ctx := context.Background()
	s := New()

	live := &catalog.Category{Name: "Live", Status: catalog.StatusActive}
	hidden := &catalog.Category{Name: "Hidden", Status: catalog.StatusBlocked}
	brand := &catalog.Brand{Name: "Acme", Image: "x", Status: catalog.StatusActive}
	require.NoError(t, s.CreateCategory(ctx, live))
	require.NoError(t, s.CreateCategory(ctx, hidden))
	require.NoError(t, s.CreateBrand(ctx, brand))

	for i := 0; i < 3; i++ {
		seedProduct(t, s, "live", live.ID, brand.ID)
	}
	seedProduct(t, s, "hidden", hidden.ID, brand.ID)
	blocked := seedProduct(t, s, "blocked", live.ID, brand.ID)
	_, err := s.SetProductStatus(ctx, blocked.ID, catalog.StatusBlocked)
	require.NoError(t, err)

	items, total, err := s.ListProducts(ctx, catalog.ProductQuery{Audience: catalog.AudiencePublic, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 2)

	items, total, err = s.ListProducts(ctx, catalog.ProductQuery{Audience: catalog.AudienceAdmin, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, items, 5)

	items, total, err = s.ListProducts(ctx, catalog.ProductQuery{Audience: catalog.AudiencePublic, Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, items)
}

func TestToggles(t *testing.T) {
	ctx := context.Background()
	s := New()

	o := &catalog.Offer{Title: "Sale", DiscountType: catalog.DiscountFlat, IsActive: true}
	require.NoError(t, s.CreateOffer(ctx, o))
	got, err := s.ToggleOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	got, err = s.ToggleOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	h := &catalog.HeroImage{ImageURL: "x", IsActive: true}
	require.NoError(t, s.CreateHeroImage(ctx, h))
	hv, err := s.ToggleHeroImage(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, hv.IsActive)

	active, err := s.ListHeroImages(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = s.ToggleHeroImage(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSearchNamesSkipsBlockedCategories(t *testing.T) {
	ctx := context.Background()
	s := New()
	shoes := &catalog.Category{Name: "Shoes", Status: catalog.StatusActive}
	boots := &catalog.Category{Name: "Shoelaces", Status: catalog.StatusBlocked}
	require.NoError(t, s.CreateCategory(ctx, shoes))
	require.NoError(t, s.CreateCategory(ctx, boots))
	seedProduct(t, s, "Shoe Tree", shoes.ID, "b")

	res, err := s.SearchNames(ctx, "sho")
	require.NoError(t, err)
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "Shoes", res.Categories[0].Name)
	require.Len(t, res.Products, 1)
	require.NotNil(t, res.Products[0].Category)
	assert.Equal(t, "Shoes", *res.Products[0].Category)
}
