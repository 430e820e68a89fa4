package service

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultMeTTL bounds how long a resolved identity is trusted. Nothing
// invalidates the me tag, so a revoked token stays usable this long.
const DefaultMeTTL = 30 * time.Second

// UserService resolves the signed-in user from the forwarded Authorization
// header. Lookups are cached per header.
type UserService struct {
	roster Roster
	cache  *cache.QueryCache
	ttl    time.Duration
}

func NewUserService(roster Roster, queryCache *cache.QueryCache, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = DefaultMeTTL
	}
	return &UserService{roster: roster, cache: queryCache, ttl: ttl}
}

func (s *UserService) CurrentUser(ctx context.Context) (*domain.User, error) {
	header, ok := ctxdata.GetAuthHeader(ctx)
	if !ok {
		return nil, fmt.Errorf("no authorization header: %w", errdefs.ErrPermissionDenied)
	}

	sum := sha256.Sum256([]byte(header))
	key := cache.NewKey(cache.TagMe, hex.EncodeToString(sum[:]))
	res, err := cache.FetchTTL(ctx, s.cache, key, s.ttl, s.roster.GetMe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	return res.Data, nil
}
