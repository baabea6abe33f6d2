package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrBarcodeExhausted is returned when barcode generation failed to
// find an unused value after the maximum number of attempts.  With a
// 64-bit space the collision probability stays around 1e-5% even
// after millions of tickets, so this error is a safety net that is
// never expected in practice.  Handlers surface it as HTTP 500.
var ErrBarcodeExhausted = errors.New("failed to generate unique barcode")

// maxBarcodeAttempts bounds the collision retry loop.
const maxBarcodeAttempts = 5

// randomBarcode generates 8 random bytes and hex-encodes them into a
// 16 character lowercase barcode.  crypto/rand ensures the values are
// unpredictable.
func randomBarcode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// generateBarcode produces a barcode that does not collide with any
// existing ticket according to the supplied existence check.  It does
// not reserve the value: the unique index on tickets.barcode remains
// the final backstop, and callers retry the insert on a duplicate-key
// error.  After maxBarcodeAttempts collisions it gives up with
// ErrBarcodeExhausted.
func generateBarcode(ctx context.Context, exists func(ctx context.Context, barcode string) (bool, error)) (string, error) {
	for i := 0; i < maxBarcodeAttempts; i++ {
		candidate, err := randomBarcode()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrBarcodeExhausted
}
