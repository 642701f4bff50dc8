package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func TestNotFoundError(t *testing.T) {
	err := errs.NewNotFoundError("product", uint(42))

	assert.Equal(t, "product", err.Kind)
	assert.Equal(t, uint(42), err.ID)
	assert.Equal(t, "product not found: 42", err.Error())
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestUnavailableError(t *testing.T) {
	err := errs.NewUnavailableError("Leather Boots")

	assert.Equal(t, `product "Leather Boots" is not available`, err.Error())
	assert.True(t, errors.Is(err, errs.ErrUnavailable))
}

func TestInsufficientStockError(t *testing.T) {
	err := errs.NewInsufficientStockError("Momo Platter", 5, 2)

	assert.Equal(t, "Momo Platter", err.ProductName)
	assert.Equal(t, 5, err.Requested)
	assert.Equal(t, 2, err.Available)
	assert.Equal(t, `insufficient stock for "Momo Platter": requested 5, available 2`, err.Error())
	assert.True(t, errors.Is(err, errs.ErrInsufficientStock))

	var stockErr *errs.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Available)
}

func TestEmptyCartError(t *testing.T) {
	err := errs.NewEmptyCartError("sess-1")

	assert.Equal(t, `cart for session "sess-1" is empty`, err.Error())
	assert.True(t, errors.Is(err, errs.ErrEmptyCart))
}

func TestInvalidStatusError(t *testing.T) {
	err := errs.NewInvalidStatusError("SHIPPED")

	assert.Equal(t, `invalid status: "SHIPPED"`, err.Error())
	assert.True(t, errors.Is(err, errs.ErrInvalidStatus))
}
