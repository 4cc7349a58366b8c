package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"zaafa/internal/domain/catalog"
)

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := parseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = parseID("42")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("op", nil))
	assert.ErrorIs(t, mapErr("op", mongo.ErrNoDocuments), catalog.ErrNotFound)
	assert.ErrorIs(t, mapErr("op", context.DeadlineExceeded), catalog.ErrUnavailable)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapErr("insert", dup), catalog.ErrDuplicateName)

	other := errors.New("boom")
	err := mapErr("op", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
}

func TestProductMatchPublic(t *testing.T) {
	blocked := catalog.StatusBlocked
	m := productMatch(catalog.ProductQuery{Audience: catalog.AudiencePublic, Status: &blocked, Search: "a.b"})

	assert.Equal(t, "active", m["status"], "public audience ignores the status filter")
	assert.Equal(t, primitive.Regex{Pattern: `a\.b`, Options: "i"}, m["name"])
}

func TestProductMatchAdmin(t *testing.T) {
	cat := primitive.NewObjectID()
	skip := primitive.NewObjectID()
	blocked := catalog.StatusBlocked

	m := productMatch(catalog.ProductQuery{
		Audience:   catalog.AudienceAdmin,
		CategoryID: cat.Hex(),
		BrandID:    "not-an-id",
		ExcludeID:  skip.Hex(),
		Status:     &blocked,
	})

	assert.Equal(t, cat, m["category_id"])
	assert.Equal(t, primitive.NilObjectID, m["brand_id"])
	assert.Equal(t, bson.M{"$ne": skip}, m["_id"])
	assert.Equal(t, "blocked", m["status"])
}

func TestRefs(t *testing.T) {
	cat, brand := primitive.NewObjectID(), primitive.NewObjectID()
	offer := primitive.NewObjectID().Hex()

	c, b, o, err := refs(&catalog.Product{CategoryID: cat.Hex(), BrandID: brand.Hex(), OfferID: &offer})
	require.NoError(t, err)
	assert.Equal(t, cat, c)
	assert.Equal(t, brand, b)
	require.NotNil(t, o)
	assert.Equal(t, offer, o.Hex())

	_, _, _, err = refs(&catalog.Product{CategoryID: "x", BrandID: brand.Hex()})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
	assert.EqualError(t, err, "invalid input: category x does not exist")

	_, _, _, err = refs(&catalog.Product{CategoryID: cat.Hex(), BrandID: "y"})
	assert.EqualError(t, err, "invalid input: brand y does not exist")

	bad := "z"
	_, _, _, err = refs(&catalog.Product{CategoryID: cat.Hex(), BrandID: brand.Hex(), OfferID: &bad})
	assert.EqualError(t, err, "invalid input: offer z does not exist")
}

func TestProductViewDocDomain(t *testing.T) {
	d := productViewDoc{
		Product:  productDoc{ID: primitive.NewObjectID(), Name: "Runner", Status: "active"},
		Category: &categoryDoc{ID: primitive.NewObjectID(), Name: "Shoes", Status: "active"},
	}
	v := d.domain()
	assert.Equal(t, "Runner", v.Name)
	assert.Equal(t, []string{}, v.Images)
	require.NotNil(t, v.Category)
	assert.Equal(t, "Shoes", v.Category.Name)
	assert.Nil(t, v.Brand)
	assert.Nil(t, v.Offer)
	assert.Nil(t, v.OfferID)
}
