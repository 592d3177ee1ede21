package repository

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tablehost/restaurantapi/internal/db/models"
)

// CachedSessionRepository keeps recently read sessions in an LRU in front of
// another SessionRepository. Sessions are immutable after creation so the only
// invalidation needed is on delete.
type CachedSessionRepository struct {
	next  SessionRepository
	cache *lru.Cache[string, models.Session]
}

// NewCachedSessionRepository wraps next with an LRU of the given size.
func NewCachedSessionRepository(next SessionRepository, size int) (*CachedSessionRepository, error) {
	cache, err := lru.New[string, models.Session](size)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &CachedSessionRepository{next: next, cache: cache}, nil
}

func (r *CachedSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.next.Create(ctx, session); err != nil {
		return err
	}
	r.cache.Add(session.TokenHash, *session)
	return nil
}

func (r *CachedSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	if s, ok := r.cache.Get(tokenHash); ok {
		return &s, nil
	}
	s, err := r.next.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	r.cache.Add(tokenHash, *s)
	return s, nil
}

func (r *CachedSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	r.cache.Remove(tokenHash)
	return r.next.DeleteByTokenHash(ctx, tokenHash)
}
