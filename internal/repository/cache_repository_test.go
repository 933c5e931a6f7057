package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())

	var dest map[string]interface{}
	assert.ErrorIs(t, repo.Get(ctx, "insights:performance:s1:all", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "insights:performance:s1:all", map[string]int{"a": 1}, time.Minute))

	deleted, err := repo.DeleteByPattern(ctx, "insights:*")
	assert.NoError(t, err)
	assert.Zero(t, deleted)
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
