// Package qrcode renders short-link URLs as PNG QR images.
package qrcode

import (
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var ErrEmptyContent = errors.New("qr content cannot be empty")

const defaultSize = 256

// Generate encodes content as a PNG QR image. A non-positive size falls
// back to the default.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(errors.New("failed to generate QR code"), err)
	}
	return png, nil
}
