package order_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/domain/order"
)

func TestTimeNumberGenerator_Format(t *testing.T) {
	gen := order.NewTimeNumberGenerator()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	number := gen.Next(now)

	assert.Equal(t, fmt.Sprintf("ORD%d", now.UnixMilli()), number)
}

func TestTimeNumberGenerator_SameMillisecondBumps(t *testing.T) {
	gen := order.NewTimeNumberGenerator()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first := gen.Next(now)
	second := gen.Next(now)
	third := gen.Next(now)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, second, third)

	// Strictly increasing even with a frozen clock
	assert.Equal(t, fmt.Sprintf("ORD%d", now.UnixMilli()+1), second)
	assert.Equal(t, fmt.Sprintf("ORD%d", now.UnixMilli()+2), third)
}

func TestTimeNumberGenerator_ClockGoingBackwards(t *testing.T) {
	gen := order.NewTimeNumberGenerator()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first := gen.Next(now)
	second := gen.Next(now.Add(-time.Hour))

	assert.NotEqual(t, first, second)
	assert.Equal(t, fmt.Sprintf("ORD%d", now.UnixMilli()+1), second)
}

func TestTimeNumberGenerator_ConcurrentUniqueness(t *testing.T) {
	gen := order.NewTimeNumberGenerator()
	now := time.Now()

	const n = 100
	numbers := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			numbers <- gen.Next(now)
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for number := range numbers {
		require.True(t, strings.HasPrefix(number, "ORD"))
		require.False(t, seen[number], "duplicate order number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}
