package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zaafa/internal/domain/catalog"
)

var _ catalog.Store = (*Repository)(nil)

type productDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Name        string              `bson:"name"`
	Price       float64             `bson:"price"`
	Description *string             `bson:"description,omitempty"`
	Images      []string            `bson:"images"`
	CategoryID  primitive.ObjectID  `bson:"category_id"`
	BrandID     primitive.ObjectID  `bson:"brand_id"`
	OfferID     *primitive.ObjectID `bson:"offer_id,omitempty"`
	Status      string              `bson:"status"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

// productViewDoc is the shape produced by the lookup stages.
type productViewDoc struct {
	Product  productDoc   `bson:",inline"`
	Category *categoryDoc `bson:"category,omitempty"`
	Brand    *brandDoc    `bson:"brand,omitempty"`
	Offer    *offerDoc    `bson:"offer,omitempty"`
}

func (d *productDoc) domain() *catalog.Product {
	p := &catalog.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		Images:      d.Images,
		CategoryID:  d.CategoryID.Hex(),
		BrandID:     d.BrandID.Hex(),
		Status:      catalog.Status(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.OfferID != nil {
		id := d.OfferID.Hex()
		p.OfferID = &id
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}

func (d *productViewDoc) domain() *catalog.ProductView {
	v := &catalog.ProductView{Product: *d.Product.domain()}
	if d.Category != nil {
		v.Category = d.Category.domain()
	}
	if d.Brand != nil {
		v.Brand = d.Brand.domain()
	}
	if d.Offer != nil {
		v.Offer = d.Offer.domain()
	}
	return v
}

// refs converts the hex references of p. Malformed ids surface as invalid input.
func refs(p *catalog.Product) (cat, brand primitive.ObjectID, offer *primitive.ObjectID, err error) {
	if cat, err = primitive.ObjectIDFromHex(p.CategoryID); err != nil {
		return cat, brand, nil, fmt.Errorf("%w: category %s does not exist", catalog.ErrInvalidInput, p.CategoryID)
	}
	if brand, err = primitive.ObjectIDFromHex(p.BrandID); err != nil {
		return cat, brand, nil, fmt.Errorf("%w: brand %s does not exist", catalog.ErrInvalidInput, p.BrandID)
	}
	if p.OfferID != nil {
		oid, err := primitive.ObjectIDFromHex(*p.OfferID)
		if err != nil {
			return cat, brand, nil, fmt.Errorf("%w: offer %s does not exist", catalog.ErrInvalidInput, *p.OfferID)
		}
		offer = &oid
	}
	return cat, brand, offer, nil
}

// lookupStages joins category, brand and offer onto each product.
func lookupStages() mongo.Pipeline {
	join := func(from, local, as string) []bson.D {
		return []bson.D{
			{{Key: "$lookup", Value: bson.M{"from": from, "localField": local, "foreignField": "_id", "as": as}}},
			{{Key: "$unwind", Value: bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}}},
		}
	}
	var p mongo.Pipeline
	p = append(p, join(colCategories, "category_id", "category")...)
	p = append(p, join(colBrands, "brand_id", "brand")...)
	p = append(p, join(colOffers, "offer_id", "offer")...)
	return p
}

func (r *Repository) CreateProduct(ctx context.Context, p *catalog.Product) error {
	cat, brand, offer, err := refs(p)
	if err != nil {
		return err
	}
	now := r.stamp()
	doc := productDoc{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Images:      p.Images,
		CategoryID:  cat,
		BrandID:     brand,
		OfferID:     offer,
		Status:      string(p.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.db.Collection(colProducts).InsertOne(ctx, doc); err != nil {
		return mapErr("insert product", err)
	}
	*p = *doc.domain()
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*catalog.ProductView, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": oid}}}}
	pipeline = append(pipeline, lookupStages()...)

	cur, err := r.db.Collection(colProducts).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr("get product", err)
	}
	var docs []productViewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode product", err)
	}
	if len(docs) == 0 {
		return nil, catalog.ErrNotFound
	}
	return docs[0].domain(), nil
}

// productMatch builds the pre-join filter on the product's own fields.
func productMatch(q catalog.ProductQuery) bson.M {
	m := bson.M{}
	if q.CategoryID != "" {
		oid, err := primitive.ObjectIDFromHex(q.CategoryID)
		if err != nil {
			// unknown id never matches
			oid = primitive.NilObjectID
		}
		m["category_id"] = oid
	}
	if q.BrandID != "" {
		oid, err := primitive.ObjectIDFromHex(q.BrandID)
		if err != nil {
			oid = primitive.NilObjectID
		}
		m["brand_id"] = oid
	}
	if q.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeID); err == nil {
			m["_id"] = bson.M{"$ne": oid}
		}
	}
	if q.Search != "" {
		m["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	}
	switch {
	case q.Audience == catalog.AudiencePublic:
		m["status"] = string(catalog.StatusActive)
	case q.Status != nil:
		m["status"] = string(*q.Status)
	}
	return m
}

// ListProducts runs a single aggregation: match, join, the storefront
// visibility match, then a $facet carrying the page and the total.
func (r *Repository) ListProducts(ctx context.Context, q catalog.ProductQuery) ([]*catalog.ProductView, int, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: productMatch(q)}}}
	pipeline = append(pipeline, lookupStages()...)
	if q.Audience == catalog.AudiencePublic {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"category.status": string(catalog.StatusActive),
			"brand.status":    string(catalog.StatusActive),
		}}})
	}

	items := bson.A{
		bson.M{"$sort": bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		bson.M{"$skip": q.Offset},
	}
	if q.Limit > 0 {
		items = append(items, bson.M{"$limit": q.Limit})
	}
	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"items": items,
		"total": bson.A{bson.M{"$count": "n"}},
	}}})

	cur, err := r.db.Collection(colProducts).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, mapErr("list products", err)
	}
	var out []struct {
		Items []productViewDoc `bson:"items"`
		Total []struct {
			N int `bson:"n"`
		} `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mapErr("decode products", err)
	}
	if len(out) == 0 {
		return []*catalog.ProductView{}, 0, nil
	}

	total := 0
	if len(out[0].Total) > 0 {
		total = out[0].Total[0].N
	}
	views := make([]*catalog.ProductView, 0, len(out[0].Items))
	for i := range out[0].Items {
		views = append(views, out[0].Items[i].domain())
	}
	return views, total, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	oid, err := parseID(p.ID)
	if err != nil {
		return err
	}
	cat, brand, offer, err := refs(p)
	if err != nil {
		return err
	}
	set := bson.M{
		"name":        p.Name,
		"price":       p.Price,
		"description": p.Description,
		"images":      p.Images,
		"category_id": cat,
		"brand_id":    brand,
		"offer_id":    offer,
		"updated_at":  r.stamp(),
	}
	var doc productDoc
	err = r.db.Collection(colProducts).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return mapErr("update product", err)
	}
	*p = *doc.domain()
	return nil
}

func (r *Repository) SetProductStatus(ctx context.Context, id string, status catalog.Status) (*catalog.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc productDoc
	err = r.db.Collection(colProducts).FindOneAndUpdate(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": r.stamp()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, mapErr("set product status", err)
	}
	return doc.domain(), nil
}

func (r *Repository) SearchNames(ctx context.Context, term string) (*catalog.SearchResult, error) {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	res := &catalog.SearchResult{Categories: []catalog.SearchHit{}, Products: []catalog.SearchHit{}}

	cats, err := findAll(ctx, r.db.Collection(colCategories),
		bson.M{"name": rx, "status": bson.M{"$ne": string(catalog.StatusBlocked)}}, (*categoryDoc).domain)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		res.Categories = append(res.Categories, catalog.SearchHit{Type: "category", ID: c.ID, Name: c.Name})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"name": rx}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{"from": colCategories, "localField": "category_id", "foreignField": "_id", "as": "category"}}},
		{{Key: "$unwind", Value: bson.M{"path": "$category", "preserveNullAndEmptyArrays": true}}},
	}
	cur, err := r.db.Collection(colProducts).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr("search products", err)
	}
	var docs []productViewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode product hits", err)
	}
	for i := range docs {
		hit := catalog.SearchHit{Type: "product", ID: docs[i].Product.ID.Hex(), Name: docs[i].Product.Name}
		if docs[i].Category != nil {
			name := docs[i].Category.Name
			hit.Category = &name
		}
		res.Products = append(res.Products, hit)
	}
	return res, nil
}
