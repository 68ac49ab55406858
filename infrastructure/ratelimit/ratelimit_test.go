package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/dealdeck/dataroom-api/infrastructure/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterEnforcesBudgetPerKey(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "upload:198.51.100.7")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := limiter.Allow(ctx, "upload:198.51.100.7")
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client keeps its own budget.
	allowed, err = limiter.Allow(ctx, "upload:203.0.113.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
