package service

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"context"
	"fmt"
)

// CatalogService serves the course and deck lists through the query cache.
type CatalogService struct {
	catalog ContentCatalog
	cache   *cache.QueryCache
}

func NewCatalogService(catalog ContentCatalog, queryCache *cache.QueryCache) *CatalogService {
	return &CatalogService{catalog: catalog, cache: queryCache}
}

func contentKey(ctx context.Context, list string) cache.Key {
	viewer, _ := ctxdata.GetUserID(ctx)
	return cache.NewKey(cache.TagContent, viewer, list)
}

func (s *CatalogService) ListCourses(ctx context.Context) (cache.Result[[]*domain.Course], error) {
	res, err := cache.Fetch(ctx, s.cache, contentKey(ctx, "courses"), s.catalog.ListCourses)
	if err != nil {
		return res, fmt.Errorf("failed to list courses: %w", err)
	}
	return res, nil
}

func (s *CatalogService) ListDecks(ctx context.Context) (cache.Result[[]*domain.Deck], error) {
	res, err := cache.Fetch(ctx, s.cache, contentKey(ctx, "decks"), s.catalog.ListDecks)
	if err != nil {
		return res, fmt.Errorf("failed to list decks: %w", err)
	}
	return res, nil
}
