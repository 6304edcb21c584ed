package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRevocationRepository(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewRevocationRepository(openTestDB(t))

	revoked, err := repository.IsRevoked(ctx, "jti-1")
	req.NoError(err)
	req.False(revoked)

	req.NoError(repository.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = repository.IsRevoked(ctx, "jti-1")
	req.NoError(err)
	req.True(revoked)

	revoked, err = repository.IsRevoked(ctx, "jti-2")
	req.NoError(err)
	req.False(revoked)
}
