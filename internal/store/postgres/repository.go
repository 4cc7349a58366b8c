package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"zaafa/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements catalog.Store on top of a pgx pool.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) catalog.Store {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// parseID converts an opaque catalog id into a primary key. Malformed ids
// cannot match any row, so callers treat !ok as not found.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// mapErr translates driver errors into catalog errors.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, catalog.ErrDuplicateName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w: referenced record does not exist", op, catalog.ErrInvalidInput)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w: %s", op, catalog.ErrInvalidInput, pgErr.Message)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, catalog.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// escapeLike quotes LIKE wildcards so the search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ------------------------------------
// Categories
// ------------------------------------

const categoryColumns = `id, name, description, image, status, created_at, updated_at`

func scanCategory(row rowScanner) (*catalog.Category, error) {
	var (
		c  catalog.Category
		id int64
	)
	if err := row.Scan(&id, &c.Name, &c.Description, &c.Image, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = formatID(id)
	return &c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *catalog.Category) error {
	query := `
		INSERT INTO categories (name, description, image, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + categoryColumns + `;
	`
	created, err := scanCategory(r.db.QueryRow(ctx, query, c.Name, c.Description, c.Image, c.Status))
	if err != nil {
		return mapErr("create category", err)
	}
	*c = *created
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1;`
	c, err := scanCategory(r.db.QueryRow(ctx, query, pk))
	if err != nil {
		return nil, mapErr("get category", err)
	}
	return c, nil
}

func (r *Repository) ListCategories(ctx context.Context, activeOnly bool) ([]*catalog.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE ($1 = false OR status = 'active')
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, mapErr("list categories", err)
	}
	defer rows.Close()

	list := []*catalog.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("rows iteration", err)
	}
	return list, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	pk, ok := parseID(c.ID)
	if !ok {
		return catalog.ErrNotFound
	}
	query := `
		UPDATE categories
		SET name = $1, description = $2, image = $3, updated_at = now()
		WHERE id = $4
		RETURNING ` + categoryColumns + `;
	`
	updated, err := scanCategory(r.db.QueryRow(ctx, query, c.Name, c.Description, c.Image, pk))
	if err != nil {
		return mapErr("update category", err)
	}
	*c = *updated
	return nil
}

func (r *Repository) SetCategoryStatus(ctx context.Context, id string, status catalog.Status) (*catalog.Category, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	query := `
		UPDATE categories SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + categoryColumns + `;
	`
	c, err := scanCategory(r.db.QueryRow(ctx, query, status, pk))
	if err != nil {
		return nil, mapErr("set category status", err)
	}
	return c, nil
}

func (r *Repository) CategoryNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	return r.nameTaken(ctx, "categories", "name", name, excludeID)
}

// nameTaken runs a case-insensitive existence check. table and column are
// compile-time constants from this package, never user input.
func (r *Repository) nameTaken(ctx context.Context, table, column, value, excludeID string) (bool, error) {
	exclude, _ := parseID(excludeID)
	query := fmt.Sprintf(`
		SELECT EXISTS(
			SELECT 1 FROM %s
			WHERE LOWER(%s) = LOWER($1) AND id <> $2
		)`, table, column)

	var exists bool
	if err := r.db.QueryRow(ctx, query, strings.TrimSpace(value), exclude).Scan(&exists); err != nil {
		return false, mapErr("check "+table+" name", err)
	}
	return exists, nil
}

// ------------------------------------
// Brands
// ------------------------------------

const brandColumns = `id, name, image, status, created_at, updated_at`

func scanBrand(row rowScanner) (*catalog.Brand, error) {
	var (
		b  catalog.Brand
		id int64
	)
	if err := row.Scan(&id, &b.Name, &b.Image, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.ID = formatID(id)
	return &b, nil
}

func (r *Repository) CreateBrand(ctx context.Context, b *catalog.Brand) error {
	query := `
		INSERT INTO brands (name, image, status)
		VALUES ($1, $2, $3)
		RETURNING ` + brandColumns + `;
	`
	created, err := scanBrand(r.db.QueryRow(ctx, query, b.Name, b.Image, b.Status))
	if err != nil {
		return mapErr("create brand", err)
	}
	*b = *created
	return nil
}

func (r *Repository) GetBrand(ctx context.Context, id string) (*catalog.Brand, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = $1;`
	b, err := scanBrand(r.db.QueryRow(ctx, query, pk))
	if err != nil {
		return nil, mapErr("get brand", err)
	}
	return b, nil
}

func (r *Repository) ListBrands(ctx context.Context, activeOnly bool) ([]*catalog.Brand, error) {
	query := `
		SELECT ` + brandColumns + `
		FROM brands
		WHERE ($1 = false OR status = 'active')
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, mapErr("list brands", err)
	}
	defer rows.Close()

	list := []*catalog.Brand{}
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("rows iteration", err)
	}
	return list, nil
}

func (r *Repository) UpdateBrand(ctx context.Context, b *catalog.Brand) error {
	pk, ok := parseID(b.ID)
	if !ok {
		return catalog.ErrNotFound
	}
	query := `
		UPDATE brands
		SET name = $1, image = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + brandColumns + `;
	`
	updated, err := scanBrand(r.db.QueryRow(ctx, query, b.Name, b.Image, pk))
	if err != nil {
		return mapErr("update brand", err)
	}
	*b = *updated
	return nil
}

func (r *Repository) SetBrandStatus(ctx context.Context, id string, status catalog.Status) (*catalog.Brand, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	query := `
		UPDATE brands SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + brandColumns + `;
	`
	b, err := scanBrand(r.db.QueryRow(ctx, query, status, pk))
	if err != nil {
		return nil, mapErr("set brand status", err)
	}
	return b, nil
}

func (r *Repository) BrandNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	return r.nameTaken(ctx, "brands", "name", name, excludeID)
}

// ------------------------------------
// Offers
// ------------------------------------

const offerColumns = `id, title, description, discount_type, discount_value, start_date, end_date, is_active, created_at, updated_at`

func scanOffer(row rowScanner) (*catalog.Offer, error) {
	var (
		o  catalog.Offer
		id int64
	)
	if err := row.Scan(&id, &o.Title, &o.Description, &o.DiscountType, &o.DiscountValue,
		&o.StartDate, &o.EndDate, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.ID = formatID(id)
	return &o, nil
}

func (r *Repository) CreateOffer(ctx context.Context, o *catalog.Offer) error {
	query := `
		INSERT INTO offers (title, description, discount_type, discount_value, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + offerColumns + `;
	`
	created, err := scanOffer(r.db.QueryRow(ctx, query, o.Title, o.Description, o.DiscountType,
		o.DiscountValue, o.StartDate, o.EndDate, o.IsActive))
	if err != nil {
		return mapErr("create offer", err)
	}
	*o = *created
	return nil
}

func (r *Repository) GetOffer(ctx context.Context, id string) (*catalog.Offer, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1;`
	o, err := scanOffer(r.db.QueryRow(ctx, query, pk))
	if err != nil {
		return nil, mapErr("get offer", err)
	}
	return o, nil
}

func (r *Repository) ListOffers(ctx context.Context, activeOnly bool) ([]*catalog.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE ($1 = false OR is_active = true)
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, mapErr("list offers", err)
	}
	defer rows.Close()

	list := []*catalog.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("rows iteration", err)
	}
	return list, nil
}

func (r *Repository) UpdateOffer(ctx context.Context, o *catalog.Offer) error {
	pk, ok := parseID(o.ID)
	if !ok {
		return catalog.ErrNotFound
	}
	query := `
		UPDATE offers
		SET title = $1, description = $2, discount_type = $3, discount_value = $4,
		    start_date = $5, end_date = $6, is_active = $7, updated_at = now()
		WHERE id = $8
		RETURNING ` + offerColumns + `;
	`
	updated, err := scanOffer(r.db.QueryRow(ctx, query, o.Title, o.Description, o.DiscountType,
		o.DiscountValue, o.StartDate, o.EndDate, o.IsActive, pk))
	if err != nil {
		return mapErr("update offer", err)
	}
	*o = *updated
	return nil
}

func (r *Repository) ToggleOffer(ctx context.Context, id string) (*catalog.Offer, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	query := `
		UPDATE offers SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING ` + offerColumns + `;
	`
	o, err := scanOffer(r.db.QueryRow(ctx, query, pk))
	if err != nil {
		return nil, mapErr("toggle offer", err)
	}
	return o, nil
}

func (r *Repository) OfferTitleTaken(ctx context.Context, title, excludeID string) (bool, error) {
	return r.nameTaken(ctx, "offers", "title", title, excludeID)
}

// ------------------------------------
// Hero images
// ------------------------------------

const heroColumns = `id, image_url, is_active, created_at`

func scanHeroImage(row rowScanner) (*catalog.HeroImage, error) {
	var (
		h  catalog.HeroImage
		id int64
	)
	if err := row.Scan(&id, &h.ImageURL, &h.IsActive, &h.CreatedAt); err != nil {
		return nil, err
	}
	h.ID = formatID(id)
	return &h, nil
}

func (r *Repository) CreateHeroImage(ctx context.Context, h *catalog.HeroImage) error {
	query := `
		INSERT INTO hero_images (image_url, is_active)
		VALUES ($1, $2)
		RETURNING ` + heroColumns + `;
	`
	created, err := scanHeroImage(r.db.QueryRow(ctx, query, h.ImageURL, h.IsActive))
	if err != nil {
		return mapErr("create hero image", err)
	}
	*h = *created
	return nil
}

func (r *Repository) ListHeroImages(ctx context.Context, activeOnly bool) ([]*catalog.HeroImage, error) {
	query := `
		SELECT ` + heroColumns + `
		FROM hero_images
		WHERE ($1 = false OR is_active = true)
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, mapErr("list hero images", err)
	}
	defer rows.Close()

	list := []*catalog.HeroImage{}
	for rows.Next() {
		h, err := scanHeroImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hero image: %w", err)
		}
		list = append(list, h)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("rows iteration", err)
	}
	return list, nil
}

func (r *Repository) ToggleHeroImage(ctx context.Context, id string) (*catalog.HeroImage, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	query := `
		UPDATE hero_images SET is_active = NOT is_active
		WHERE id = $1
		RETURNING ` + heroColumns + `;
	`
	h, err := scanHeroImage(r.db.QueryRow(ctx, query, pk))
	if err != nil {
		return nil, mapErr("toggle hero image", err)
	}
	return h, nil
}
