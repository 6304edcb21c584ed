//go:generate go run go.uber.org/mock/mockgen -source=auth.go -destination=../mocks/mock_auth.go -package=mocks
package contract

import (
	"context"
	"dialog-hub/domain"
	"time"
)

// ITokenValidator resolves a bearer access token into the user it was issued to.
type ITokenValidator interface {
	Validate(ctx context.Context, token string) (domain.UserID, error)
}

// IRevocationList answers whether a token id was revoked by the auth service.
type IRevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
