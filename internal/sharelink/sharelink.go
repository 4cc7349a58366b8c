// Package sharelink builds the outward links for a product: the storefront
// URL, the WhatsApp purchase link, short share codes and the link-preview page.
package sharelink

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/speps/go-hashids/v2"
)

var ErrInvalidCode = errors.New("invalid share code")

// Codec maps product ids to short opaque codes and back. Any id string
// round-trips, whichever store produced it.
type Codec struct {
	h *hashids.HashID
}

func NewCodec(salt string, minLength int) (*Codec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("hashids: %w", err)
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(id string) (string, error) {
	if id == "" {
		return "", ErrInvalidCode
	}
	return c.h.EncodeHex(hex.EncodeToString([]byte(id)))
}

func (c *Codec) Decode(code string) (string, error) {
	h, err := c.h.DecodeHex(code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	raw, err := hex.DecodeString(h)
	if err != nil || len(raw) == 0 {
		return "", ErrInvalidCode
	}
	return string(raw), nil
}

// ProductURL is the storefront page of a product.
func ProductURL(storefront, id string) string {
	return strings.TrimRight(storefront, "/") + "/product/" + url.PathEscape(id)
}

// FormatPrice renders a price without trailing zeros, e.g. 1200 or 99.5.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// PurchaseMessage is the prefilled WhatsApp text for buying a product.
func PurchaseMessage(name string, price float64, productURL string) string {
	return fmt.Sprintf("Hello, I want to buy:\n\n*%s*\nPrice: Rs.%s\n\nCheck it here: %s", name, FormatPrice(price), productURL)
}

// WhatsAppURL builds a wa.me deep link. Non-digits are stripped from the number.
func WhatsAppURL(number, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message)
}
