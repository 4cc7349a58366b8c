package catalog

import (
	"context"
	"strings"
	"time"
)

type OfferInput struct {
	Title         string
	Description   *string
	DiscountType  string
	DiscountValue float64
	StartDate     time.Time
	EndDate       time.Time
	// IsActive defaults to true when nil.
	IsActive *bool
}

type OfferUpdate struct {
	Title         *string
	Description   *string
	DiscountType  *string
	DiscountValue *float64
	StartDate     *time.Time
	EndDate       *time.Time
	IsActive      *bool
}

func validateOffer(o *Offer) error {
	if o.DiscountValue < 0 {
		return invalid("discount value cannot be negative")
	}
	if o.DiscountType == DiscountPercentage && o.DiscountValue > 100 {
		return invalid("percentage discount cannot exceed 100")
	}
	if o.StartDate.IsZero() || o.EndDate.IsZero() {
		return invalid("offer start and end dates are required")
	}
	if o.EndDate.Before(o.StartDate) {
		return invalid("offer end date must not precede start date")
	}
	return nil
}

func (s *Service) CreateOffer(ctx context.Context, in OfferInput) (*Offer, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("offer title is required")
	}
	dt, err := ParseDiscountType(in.DiscountType)
	if err != nil {
		return nil, err
	}

	o := &Offer{
		Title:         title,
		Description:   optionalText(in.Description),
		DiscountType:  dt,
		DiscountValue: in.DiscountValue,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		IsActive:      in.IsActive == nil || *in.IsActive,
	}
	if err := validateOffer(o); err != nil {
		return nil, err
	}

	taken, err := s.store.OfferTitleTaken(ctx, title, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicate("offer", title)
	}

	if err := s.store.CreateOffer(ctx, o); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyOffers)
	return o, nil
}

// ListOffers returns every offer to admins. The storefront sees only offers in
// effect now; the window is checked after the cache so expiry is not delayed by the TTL.
func (s *Service) ListOffers(ctx context.Context, audience Audience) ([]*Offer, error) {
	if audience != AudiencePublic {
		return s.store.ListOffers(ctx, false)
	}
	active, err := cachedList(ctx, s, cacheKeyOffers, func() ([]*Offer, error) {
		return s.store.ListOffers(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]*Offer, 0, len(active))
	for _, o := range active {
		if o.InEffect(now) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Service) GetOffer(ctx context.Context, id string, audience Audience) (*Offer, error) {
	o, err := s.store.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	if audience == AudiencePublic && !o.InEffect(s.now()) {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *Service) UpdateOffer(ctx context.Context, id string, in OfferUpdate) (*Offer, error) {
	o, err := s.store.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("offer title is required")
		}
		if !strings.EqualFold(title, o.Title) {
			taken, err := s.store.OfferTitleTaken(ctx, title, o.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, duplicate("offer", title)
			}
		}
		o.Title = title
	}
	if in.Description != nil {
		o.Description = optionalText(in.Description)
	}
	if in.DiscountType != nil {
		dt, err := ParseDiscountType(*in.DiscountType)
		if err != nil {
			return nil, err
		}
		o.DiscountType = dt
	}
	if in.DiscountValue != nil {
		o.DiscountValue = *in.DiscountValue
	}
	if in.StartDate != nil {
		o.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		o.EndDate = *in.EndDate
	}
	if in.IsActive != nil {
		o.IsActive = *in.IsActive
	}
	if err := validateOffer(o); err != nil {
		return nil, err
	}

	if err := s.store.UpdateOffer(ctx, o); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyOffers)
	return o, nil
}

func (s *Service) ToggleOffer(ctx context.Context, id string) (*Offer, error) {
	o, err := s.store.ToggleOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyOffers)
	return o, nil
}
