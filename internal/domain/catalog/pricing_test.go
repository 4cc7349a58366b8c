package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	window := func(o Offer) *Offer {
		o.IsActive = true
		o.StartDate = now.AddDate(0, 0, -1)
		o.EndDate = now.AddDate(0, 0, 1)
		return &o
	}

	expired := window(Offer{DiscountType: DiscountPercentage, DiscountValue: 50})
	expired.EndDate = now.Add(-time.Second)
	upcoming := window(Offer{DiscountType: DiscountPercentage, DiscountValue: 50})
	upcoming.StartDate = now.Add(time.Hour)
	off := window(Offer{DiscountType: DiscountFlat, DiscountValue: 10})
	off.IsActive = false

	tests := []struct {
		name  string
		price float64
		offer *Offer
		want  float64
	}{
		{"no offer", 100, nil, 100},
		{"percentage", 200, window(Offer{DiscountType: DiscountPercentage, DiscountValue: 25}), 150},
		{"flat", 200, window(Offer{DiscountType: DiscountFlat, DiscountValue: 30}), 170},
		{"flat clamps at zero", 20, window(Offer{DiscountType: DiscountFlat, DiscountValue: 30}), 0},
		{"rounds to cents", 9.99, window(Offer{DiscountType: DiscountPercentage, DiscountValue: 33}), 6.69},
		{"inactive offer", 100, off, 100},
		{"expired offer", 100, expired, 100},
		{"upcoming offer", 100, upcoming, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePrice(tt.price, tt.offer, now))
		})
	}
}

func TestInEffectOpenEnded(t *testing.T) {
	now := time.Now()
	o := &Offer{IsActive: true}
	assert.True(t, o.InEffect(now))

	var nilOffer *Offer
	assert.False(t, nilOffer.InEffect(now))
}

func TestParseDiscountType(t *testing.T) {
	for in, want := range map[string]DiscountType{
		"percentage": DiscountPercentage,
		"Percent":    DiscountPercentage,
		"flat":       DiscountFlat,
		"fixed":      DiscountFlat,
	} {
		got, err := ParseDiscountType(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDiscountType("bogo")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Blocked ")
	assert.NoError(t, err)
	assert.Equal(t, StatusBlocked, s)

	_, err = ParseStatus("deleted")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
