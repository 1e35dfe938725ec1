// Package handshake mints the unguessable tokens printed on an item's QR
// code, renders the code and caches token lookups.
package handshake

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrInvalidToken is returned for strings that cannot be a handshake token.
var ErrInvalidToken = errors.New("invalid handshake token")

// NewToken returns a fresh random (version 4) token.
func NewToken() string {
	return uuid.NewString()
}

// ParseToken validates a token taken from a URL and returns it in canonical form.
func ParseToken(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id.Version() != 4 {
		return "", ErrInvalidToken
	}
	return id.String(), nil
}

// URL returns the absolute handshake URL for token under baseURL.
func URL(baseURL, token string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid base url %q", baseURL)
	}
	return base.JoinPath("handshake", token).String(), nil
}

// Codec renders a handshake URL as an image.
type Codec interface {
	Encode(content string) (data []byte, mime string, err error)
}

// QRCodec renders PNG QR codes.
type QRCodec struct {
	// Size is the image width and height in pixels.
	Size int
}

// DefaultQRSize is the rendered QR code size in pixels.
const DefaultQRSize = 512

// Encode renders content as a PNG QR code with medium error correction.
func (c QRCodec) Encode(content string) ([]byte, string, error) {
	size := c.Size
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, "", fmt.Errorf("encoding qr code: %w", err)
	}
	return png, "image/png", nil
}
