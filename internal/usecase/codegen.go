package usecase

import (
	"crypto/rand"
	"encoding/base64"
	"io"
)

// newOpaqueCode returns an unpredictable URL-safe code with no padding,
// suitable for embedding in a deep-link start parameter.
func newOpaqueCode(nbytes int) (string, error) {
	buf := make([]byte, nbytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// newLinkCode is the 16-byte code used for deep links.
func newLinkCode() (string, error) { return newOpaqueCode(16) }

// newRedeemToken is slightly longer since users paste it by hand and it
// gates a paid grant.
func newRedeemToken() (string, error) { return newOpaqueCode(18) }
