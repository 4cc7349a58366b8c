// Package mongo stores the catalog as MongoDB documents. Products keep
// ObjectID references to their category, brand and offer, resolved with
// $lookup at read time.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zaafa/internal/domain/catalog"
)

const (
	colCategories = "categories"
	colBrands     = "brands"
	colOffers     = "offers"
	colProducts   = "products"
	colHeroImages = "hero_images"
)

// caseInsensitive backs the unique name indexes and the NameTaken lookups.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type Repository struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect dials uri and returns a repository over database.
func Connect(ctx context.Context, uri, database string) (*Repository, error) {
	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(20)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewRepository(client, database), nil
}

func NewRepository(client *mongo.Client, database string) *Repository {
	return &Repository{client: client, db: client.Database(database), now: time.Now}
}

// EnsureIndexes creates the case-insensitive unique name indexes and the
// listing indexes. Safe to call on every start.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		}
	}
	byCreated := mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}

	plan := map[string][]mongo.IndexModel{
		colCategories: {unique("name"), byCreated},
		colBrands:     {unique("name"), byCreated},
		colOffers:     {unique("title"), byCreated},
		colProducts: {
			byCreated,
			{Keys: bson.D{{Key: "category_id", Value: 1}}},
			{Keys: bson.D{{Key: "brand_id", Value: 1}}},
		},
		colHeroImages: {byCreated},
	}
	for col, models := range plan {
		if _, err := r.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return mapErr("create indexes on "+col, err)
		}
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// SetClock replaces time.Now for created_at/updated_at stamps.
func (r *Repository) SetClock(now func() time.Time) { r.now = now }

// stamp truncates to the millisecond precision BSON dates keep.
func (r *Repository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// parseID treats malformed ids as missing records.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, catalog.ErrNotFound
	}
	return oid, nil
}

func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return catalog.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, catalog.ErrDuplicateName)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %v", op, catalog.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *Repository) nameTaken(ctx context.Context, col, field, value, excludeID string) (bool, error) {
	filter := bson.M{field: value}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	n, err := r.db.Collection(col).CountDocuments(ctx, filter,
		options.Count().SetCollation(caseInsensitive).SetLimit(1))
	if err != nil {
		return false, mapErr("name lookup", err)
	}
	return n > 0, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

func activeFilter(activeOnly bool) bson.M {
	if activeOnly {
		return bson.M{"status": string(catalog.StatusActive)}
	}
	return bson.M{}
}

// findAll decodes every document matched by filter and converts it to the domain type.
func findAll[D any, T any](ctx context.Context, col *mongo.Collection, filter any, conv func(*D) *T) ([]*T, error) {
	cur, err := col.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, mapErr("find "+col.Name(), err)
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode "+col.Name(), err)
	}
	out := make([]*T, 0, len(docs))
	for i := range docs {
		out = append(out, conv(&docs[i]))
	}
	return out, nil
}

// ---------- Categories ----------

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description *string            `bson:"description,omitempty"`
	Image       *string            `bson:"image,omitempty"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *categoryDoc) domain() *catalog.Category {
	return &catalog.Category{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Image:       d.Image,
		Status:      catalog.Status(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *Repository) CreateCategory(ctx context.Context, c *catalog.Category) error {
	now := r.stamp()
	doc := categoryDoc{
		ID:          primitive.NewObjectID(),
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		Status:      string(c.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.db.Collection(colCategories).InsertOne(ctx, doc); err != nil {
		return mapErr("insert category", err)
	}
	*c = *doc.domain()
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc categoryDoc
	if err := r.db.Collection(colCategories).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr("get category", err)
	}
	return doc.domain(), nil
}

func (r *Repository) ListCategories(ctx context.Context, activeOnly bool) ([]*catalog.Category, error) {
	return findAll(ctx, r.db.Collection(colCategories), activeFilter(activeOnly), (*categoryDoc).domain)
}

func (r *Repository) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	oid, err := parseID(c.ID)
	if err != nil {
		return err
	}
	set := bson.M{
		"name":        c.Name,
		"description": c.Description,
		"image":       c.Image,
		"updated_at":  r.stamp(),
	}
	var doc categoryDoc
	err = r.db.Collection(colCategories).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return mapErr("update category", err)
	}
	*c = *doc.domain()
	return nil
}

func (r *Repository) SetCategoryStatus(ctx context.Context, id string, status catalog.Status) (*catalog.Category, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc categoryDoc
	err = r.db.Collection(colCategories).FindOneAndUpdate(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": r.stamp()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, mapErr("set category status", err)
	}
	return doc.domain(), nil
}

func (r *Repository) CategoryNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	return r.nameTaken(ctx, colCategories, "name", name, excludeID)
}

// ---------- Brands ----------

type brandDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Image     string             `bson:"image"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *brandDoc) domain() *catalog.Brand {
	return &catalog.Brand{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Image:     d.Image,
		Status:    catalog.Status(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *Repository) CreateBrand(ctx context.Context, b *catalog.Brand) error {
	now := r.stamp()
	doc := brandDoc{
		ID:        primitive.NewObjectID(),
		Name:      b.Name,
		Image:     b.Image,
		Status:    string(b.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.db.Collection(colBrands).InsertOne(ctx, doc); err != nil {
		return mapErr("insert brand", err)
	}
	*b = *doc.domain()
	return nil
}

func (r *Repository) GetBrand(ctx context.Context, id string) (*catalog.Brand, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc brandDoc
	if err := r.db.Collection(colBrands).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr("get brand", err)
	}
	return doc.domain(), nil
}

func (r *Repository) ListBrands(ctx context.Context, activeOnly bool) ([]*catalog.Brand, error) {
	return findAll(ctx, r.db.Collection(colBrands), activeFilter(activeOnly), (*brandDoc).domain)
}

func (r *Repository) UpdateBrand(ctx context.Context, b *catalog.Brand) error {
	oid, err := parseID(b.ID)
	if err != nil {
		return err
	}
	var doc brandDoc
	err = r.db.Collection(colBrands).FindOneAndUpdate(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": b.Name, "image": b.Image, "updated_at": r.stamp()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return mapErr("update brand", err)
	}
	*b = *doc.domain()
	return nil
}

func (r *Repository) SetBrandStatus(ctx context.Context, id string, status catalog.Status) (*catalog.Brand, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc brandDoc
	err = r.db.Collection(colBrands).FindOneAndUpdate(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": r.stamp()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, mapErr("set brand status", err)
	}
	return doc.domain(), nil
}

func (r *Repository) BrandNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	return r.nameTaken(ctx, colBrands, "name", name, excludeID)
}

// ---------- Offers ----------

type offerDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   *string            `bson:"description,omitempty"`
	DiscountType  string             `bson:"discount_type"`
	DiscountValue float64            `bson:"discount_value"`
	StartDate     time.Time          `bson:"start_date"`
	EndDate       time.Time          `bson:"end_date"`
	IsActive      bool               `bson:"is_active"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d *offerDoc) domain() *catalog.Offer {
	return &catalog.Offer{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		DiscountType:  catalog.DiscountType(d.DiscountType),
		DiscountValue: d.DiscountValue,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		IsActive:      d.IsActive,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (r *Repository) CreateOffer(ctx context.Context, o *catalog.Offer) error {
	now := r.stamp()
	doc := offerDoc{
		ID:            primitive.NewObjectID(),
		Title:         o.Title,
		Description:   o.Description,
		DiscountType:  string(o.DiscountType),
		DiscountValue: o.DiscountValue,
		StartDate:     o.StartDate.UTC(),
		EndDate:       o.EndDate.UTC(),
		IsActive:      o.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.db.Collection(colOffers).InsertOne(ctx, doc); err != nil {
		return mapErr("insert offer", err)
	}
	*o = *doc.domain()
	return nil
}

func (r *Repository) GetOffer(ctx context.Context, id string) (*catalog.Offer, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc offerDoc
	if err := r.db.Collection(colOffers).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr("get offer", err)
	}
	return doc.domain(), nil
}

func (r *Repository) ListOffers(ctx context.Context, activeOnly bool) ([]*catalog.Offer, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	return findAll(ctx, r.db.Collection(colOffers), filter, (*offerDoc).domain)
}

func (r *Repository) UpdateOffer(ctx context.Context, o *catalog.Offer) error {
	oid, err := parseID(o.ID)
	if err != nil {
		return err
	}
	set := bson.M{
		"title":          o.Title,
		"description":    o.Description,
		"discount_type":  string(o.DiscountType),
		"discount_value": o.DiscountValue,
		"start_date":     o.StartDate.UTC(),
		"end_date":       o.EndDate.UTC(),
		"is_active":      o.IsActive,
		"updated_at":     r.stamp(),
	}
	var doc offerDoc
	err = r.db.Collection(colOffers).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return mapErr("update offer", err)
	}
	*o = *doc.domain()
	return nil
}

// ToggleOffer flips is_active server-side with an update pipeline.
func (r *Repository) ToggleOffer(ctx context.Context, id string) (*catalog.Offer, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	flip := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"is_active":  bson.M{"$not": bson.A{"$is_active"}},
		"updated_at": r.stamp(),
	}}}}
	var doc offerDoc
	err = r.db.Collection(colOffers).FindOneAndUpdate(ctx, bson.M{"_id": oid}, flip,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, mapErr("toggle offer", err)
	}
	return doc.domain(), nil
}

func (r *Repository) OfferTitleTaken(ctx context.Context, title, excludeID string) (bool, error) {
	return r.nameTaken(ctx, colOffers, "title", title, excludeID)
}

// ---------- Hero images ----------

type heroDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ImageURL  string             `bson:"image_url"`
	IsActive  bool               `bson:"is_active"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *heroDoc) domain() *catalog.HeroImage {
	return &catalog.HeroImage{ID: d.ID.Hex(), ImageURL: d.ImageURL, IsActive: d.IsActive, CreatedAt: d.CreatedAt}
}

func (r *Repository) CreateHeroImage(ctx context.Context, h *catalog.HeroImage) error {
	doc := heroDoc{ID: primitive.NewObjectID(), ImageURL: h.ImageURL, IsActive: h.IsActive, CreatedAt: r.stamp()}
	if _, err := r.db.Collection(colHeroImages).InsertOne(ctx, doc); err != nil {
		return mapErr("insert hero image", err)
	}
	*h = *doc.domain()
	return nil
}

func (r *Repository) ListHeroImages(ctx context.Context, activeOnly bool) ([]*catalog.HeroImage, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	return findAll(ctx, r.db.Collection(colHeroImages), filter, (*heroDoc).domain)
}

func (r *Repository) ToggleHeroImage(ctx context.Context, id string) (*catalog.HeroImage, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	flip := mongo.Pipeline{{{Key: "$set", Value: bson.M{"is_active": bson.M{"$not": bson.A{"$is_active"}}}}}}
	var doc heroDoc
	err = r.db.Collection(colHeroImages).FindOneAndUpdate(ctx, bson.M{"_id": oid}, flip,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, mapErr("toggle hero image", err)
	}
	return doc.domain(), nil
}
