package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var barcodePattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestRandomBarcodeFormat(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		b, err := randomBarcode()
		require.NoError(t, err)
		assert.Regexp(t, barcodePattern, b)
		seen[b] = struct{}{}
	}
	// 64 bits of entropy: a hundred draws never collide in practice.
	assert.Len(t, seen, 100)
}

func TestGenerateBarcode(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the first free candidate", func(t *testing.T) {
		calls := 0
		b, err := generateBarcode(ctx, func(ctx context.Context, barcode string) (bool, error) {
			calls++
			return false, nil
		})
		require.NoError(t, err)
		assert.Regexp(t, barcodePattern, b)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries past collisions", func(t *testing.T) {
		calls := 0
		b, err := generateBarcode(ctx, func(ctx context.Context, barcode string) (bool, error) {
			calls++
			return calls < 3, nil
		})
		require.NoError(t, err)
		assert.Regexp(t, barcodePattern, b)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after five colliding attempts", func(t *testing.T) {
		calls := 0
		_, err := generateBarcode(ctx, func(ctx context.Context, barcode string) (bool, error) {
			calls++
			return true, nil
		})
		assert.ErrorIs(t, err, ErrBarcodeExhausted)
		assert.Equal(t, 5, calls)
	})

	t.Run("propagates existence check failures", func(t *testing.T) {
		boom := errors.New("connection lost")
		_, err := generateBarcode(ctx, func(ctx context.Context, barcode string) (bool, error) {
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
	})
}
