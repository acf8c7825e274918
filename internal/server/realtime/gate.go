package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskhub/internal/common"
)

// OwnerResolver attributes a token to its owning user.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, value string) (string, error)
}

// AuthCheck is the authorization predicate shared with authenticated RPCs.
type AuthCheck interface {
	Authenticate(ctx context.Context, token, userID string) error
}

// Gate authenticates a connection attempt before it is admitted.
type Gate struct {
	owners OwnerResolver
	auth   AuthCheck
}

func NewGate(owners OwnerResolver, auth AuthCheck) *Gate {
	return &Gate{owners: owners, auth: auth}
}

// Admit returns the user a connection opened with token acts for. Every
// failure, including storage errors, refuses the connection and is
// reported as common.ErrorUnauthorized or common.ErrorInternal.
func (g *Gate) Admit(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}

	userID, err := g.owners.ResolveOwner(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if err := g.auth.Authenticate(ctx, token, userID); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return userID, nil
}
