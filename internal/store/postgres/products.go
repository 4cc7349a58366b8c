package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zaafa/internal/domain/catalog"
)

// productSelect joins every reference. Joined columns are nullable because a
// product may point at a category or brand that no longer resolves.
const productSelect = `
	SELECT
		p.id, p.name, p.price, p.description, p.images, p.category_id, p.brand_id, p.offer_id,
		p.status, p.created_at, p.updated_at,
		c.id, c.name, c.description, c.image, c.status, c.created_at, c.updated_at,
		b.id, b.name, b.image, b.status, b.created_at, b.updated_at,
		o.id, o.title, o.description, o.discount_type, o.discount_value, o.start_date, o.end_date,
		o.is_active, o.created_at, o.updated_at`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN brands b ON b.id = p.brand_id
	LEFT JOIN offers o ON o.id = p.offer_id`

type nullCategory struct {
	id          *int64
	name        *string
	description *string
	image       *string
	status      *string
	createdAt   *time.Time
	updatedAt   *time.Time
}

type nullBrand struct {
	id        *int64
	name      *string
	image     *string
	status    *string
	createdAt *time.Time
	updatedAt *time.Time
}

type nullOffer struct {
	id            *int64
	title         *string
	description   *string
	discountType  *string
	discountValue *float64
	startDate     *time.Time
	endDate       *time.Time
	isActive      *bool
	createdAt     *time.Time
	updatedAt     *time.Time
}

// scanProductView reads productSelect plus any trailing columns in extra.
func scanProductView(row rowScanner, extra ...any) (*catalog.ProductView, error) {
	var (
		v                       catalog.ProductView
		id, categoryID, brandID int64
		offerID                 *int64
		nc                      nullCategory
		nb                      nullBrand
		no                      nullOffer
	)
	dest := []any{
		&id, &v.Name, &v.Price, &v.Description, &v.Images, &categoryID, &brandID, &offerID,
		&v.Status, &v.CreatedAt, &v.UpdatedAt,
		&nc.id, &nc.name, &nc.description, &nc.image, &nc.status, &nc.createdAt, &nc.updatedAt,
		&nb.id, &nb.name, &nb.image, &nb.status, &nb.createdAt, &nb.updatedAt,
		&no.id, &no.title, &no.description, &no.discountType, &no.discountValue, &no.startDate, &no.endDate,
		&no.isActive, &no.createdAt, &no.updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	v.ID = formatID(id)
	v.CategoryID = formatID(categoryID)
	v.BrandID = formatID(brandID)
	if offerID != nil {
		oid := formatID(*offerID)
		v.OfferID = &oid
	}

	if nc.id != nil {
		v.Category = &catalog.Category{
			ID:          formatID(*nc.id),
			Name:        *nc.name,
			Description: nc.description,
			Image:       nc.image,
			Status:      catalog.Status(*nc.status),
			CreatedAt:   *nc.createdAt,
			UpdatedAt:   *nc.updatedAt,
		}
	}
	if nb.id != nil {
		v.Brand = &catalog.Brand{
			ID:        formatID(*nb.id),
			Name:      *nb.name,
			Image:     *nb.image,
			Status:    catalog.Status(*nb.status),
			CreatedAt: *nb.createdAt,
			UpdatedAt: *nb.updatedAt,
		}
	}
	if no.id != nil {
		v.Offer = &catalog.Offer{
			ID:            formatID(*no.id),
			Title:         *no.title,
			Description:   no.description,
			DiscountType:  catalog.DiscountType(*no.discountType),
			DiscountValue: *no.discountValue,
			StartDate:     *no.startDate,
			EndDate:       *no.endDate,
			IsActive:      *no.isActive,
			CreatedAt:     *no.createdAt,
			UpdatedAt:     *no.updatedAt,
		}
	}
	return &v, nil
}

// productRefs converts string references into keys for writes.
func productRefs(p *catalog.Product) (categoryID, brandID int64, offerID *int64, err error) {
	var ok bool
	if categoryID, ok = parseID(p.CategoryID); !ok {
		return 0, 0, nil, fmt.Errorf("%w: category %s does not exist", catalog.ErrInvalidInput, p.CategoryID)
	}
	if brandID, ok = parseID(p.BrandID); !ok {
		return 0, 0, nil, fmt.Errorf("%w: brand %s does not exist", catalog.ErrInvalidInput, p.BrandID)
	}
	if p.OfferID != nil {
		oid, ok := parseID(*p.OfferID)
		if !ok {
			return 0, 0, nil, fmt.Errorf("%w: offer %s does not exist", catalog.ErrInvalidInput, *p.OfferID)
		}
		offerID = &oid
	}
	return categoryID, brandID, offerID, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *catalog.Product) error {
	categoryID, brandID, offerID, err := productRefs(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (name, price, description, images, category_id, brand_id, offer_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at;
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, p.Name, p.Price, p.Description, p.Images,
		categoryID, brandID, offerID, p.Status).Scan(&id, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapErr("create product", err)
	}
	p.ID = formatID(id)
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*catalog.ProductView, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	query := productSelect + productFrom + ` WHERE p.id = $1;`
	v, err := scanProductView(r.db.QueryRow(ctx, query, pk))
	if err != nil {
		return nil, mapErr("get product", err)
	}
	return v, nil
}

// buildProductWhere renders the filter. The public audience filter runs in the
// same statement as the count, so totals never include hidden products.
// ok is false when an id filter is malformed and nothing can match.
func buildProductWhere(q catalog.ProductQuery) (where string, args []any, ok bool) {
	var conds []string
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.Audience == catalog.AudiencePublic {
		conds = append(conds, `p.status = 'active'`, `c.status = 'active'`, `b.status = 'active'`)
	} else if q.Status != nil {
		add(`p.status = $%d`, *q.Status)
	}
	if q.CategoryID != "" {
		id, valid := parseID(q.CategoryID)
		if !valid {
			return "", nil, false
		}
		add(`p.category_id = $%d`, id)
	}
	if q.BrandID != "" {
		id, valid := parseID(q.BrandID)
		if !valid {
			return "", nil, false
		}
		add(`p.brand_id = $%d`, id)
	}
	if q.ExcludeID != "" {
		if id, valid := parseID(q.ExcludeID); valid {
			add(`p.id <> $%d`, id)
		}
	}
	if q.Search != "" {
		add(`p.name ILIKE '%%' || $%d || '%%' ESCAPE '\'`, escapeLike(q.Search))
	}

	if len(conds) == 0 {
		return "", args, true
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

// ListProducts returns one page plus the filtered total. It uses COUNT(*) OVER()
// when rows exist; past the last page it falls back to a separate COUNT(*).
func (r *Repository) ListProducts(ctx context.Context, q catalog.ProductQuery) ([]*catalog.ProductView, int, error) {
	where, args, ok := buildProductWhere(q)
	if !ok {
		return []*catalog.ProductView{}, 0, nil
	}

	args = append(args, q.Limit, q.Offset)
	query := productSelect + `, COUNT(*) OVER() AS total_count` + productFrom + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapErr("list products", err)
	}
	defer rows.Close()

	products := make([]*catalog.ProductView, 0, q.Limit)
	var totalCount int
	for rows.Next() {
		var t int
		v, err := scanProductView(rows, &t)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		totalCount = t
		products = append(products, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr("rows iteration", err)
	}

	if len(products) == 0 && q.Offset > 0 {
		countQ := `SELECT COUNT(*)` + productFrom + where + `;`
		if err := r.db.QueryRow(ctx, countQ, args[:len(args)-2]...).Scan(&totalCount); err != nil {
			return nil, 0, mapErr("count products", err)
		}
	}
	return products, totalCount, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	pk, ok := parseID(p.ID)
	if !ok {
		return catalog.ErrNotFound
	}
	categoryID, brandID, offerID, err := productRefs(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = $1, price = $2, description = $3, images = $4,
		    category_id = $5, brand_id = $6, offer_id = $7, updated_at = now()
		WHERE id = $8
		RETURNING created_at, updated_at;
	`
	if err := r.db.QueryRow(ctx, query, p.Name, p.Price, p.Description, p.Images,
		categoryID, brandID, offerID, pk).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapErr("update product", err)
	}
	return nil
}

func (r *Repository) SetProductStatus(ctx context.Context, id string, status catalog.Status) (*catalog.Product, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	if _, err := r.db.Exec(ctx, `UPDATE products SET status = $1, updated_at = now() WHERE id = $2;`, status, pk); err != nil {
		return nil, mapErr("set product status", err)
	}
	v, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v.Product, nil
}

func (r *Repository) SearchNames(ctx context.Context, term string) (*catalog.SearchResult, error) {
	pattern := escapeLike(term)
	res := &catalog.SearchResult{Categories: []catalog.SearchHit{}, Products: []catalog.SearchHit{}}

	catRows, err := r.db.Query(ctx, `
		SELECT id, name FROM categories
		WHERE status <> 'blocked' AND name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY created_at DESC, id DESC;`, pattern)
	if err != nil {
		return nil, mapErr("search categories", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var (
			id   int64
			name string
		)
		if err := catRows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan category hit: %w", err)
		}
		res.Categories = append(res.Categories, catalog.SearchHit{Type: "category", ID: formatID(id), Name: name})
	}
	if err := catRows.Err(); err != nil {
		return nil, mapErr("rows iteration", err)
	}

	prodRows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, c.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY p.created_at DESC, p.id DESC;`, pattern)
	if err != nil {
		return nil, mapErr("search products", err)
	}
	defer prodRows.Close()
	for prodRows.Next() {
		var (
			id       int64
			name     string
			category *string
		)
		if err := prodRows.Scan(&id, &name, &category); err != nil {
			return nil, fmt.Errorf("scan product hit: %w", err)
		}
		res.Products = append(res.Products, catalog.SearchHit{Type: "product", ID: formatID(id), Name: name, Category: category})
	}
	if err := prodRows.Err(); err != nil {
		return nil, mapErr("rows iteration", err)
	}
	return res, nil
}
