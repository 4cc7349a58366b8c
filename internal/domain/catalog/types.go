package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Status controls storefront visibility without deleting a record.
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusBlocked
}

// ParseStatus accepts "active" or "blocked" in any case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: status must be one of active, blocked", ErrInvalidInput)
	}
	return s, nil
}

// Audience selects between the unfiltered admin view and the active-only storefront view.
type Audience int

const (
	AudienceAdmin Audience = iota
	AudiencePublic
)

func (a Audience) String() string {
	if a == AudiencePublic {
		return "public"
	}
	return "admin"
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// ParseDiscountType maps the legacy "fixed" spelling onto flat.
func ParseDiscountType(raw string) (DiscountType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "percentage", "percent":
		return DiscountPercentage, nil
	case "flat", "fixed":
		return DiscountFlat, nil
	}
	return "", fmt.Errorf("%w: discount type must be percentage or flat", ErrInvalidInput)
}

// ProductImageCount is the number of images every product carries.
const ProductImageCount = 4

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) IsActive() bool { return c != nil && c.Status == StatusActive }

type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Brand) IsActive() bool { return b != nil && b.Status == StatusActive }

type Offer struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   *string      `json:"description,omitempty"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	StartDate     time.Time    `json:"start_date"`
	EndDate       time.Time    `json:"end_date"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// InEffect reports whether the offer is switched on and now falls inside its window.
// A zero EndDate leaves the window open-ended.
func (o *Offer) InEffect(now time.Time) bool {
	if o == nil || !o.IsActive {
		return false
	}
	if !o.StartDate.IsZero() && now.Before(o.StartDate) {
		return false
	}
	if !o.EndDate.IsZero() && now.After(o.EndDate) {
		return false
	}
	return true
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description *string   `json:"description,omitempty"`
	Images      []string  `json:"images"`
	CategoryID  string    `json:"category_id"`
	BrandID     string    `json:"brand_id"`
	OfferID     *string   `json:"offer_id,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductView is a product with its references resolved in place.
type ProductView struct {
	Product
	Category       *Category `json:"category"`
	Brand          *Brand    `json:"brand"`
	Offer          *Offer    `json:"offer"`
	EffectivePrice float64   `json:"effective_price"`
}

type HeroImage struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchHit is one autocomplete suggestion.
type SearchHit struct {
	Type     string  `json:"type"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category,omitempty"`
}

type SearchResult struct {
	Categories []SearchHit `json:"categories"`
	Products   []SearchHit `json:"products"`
}
