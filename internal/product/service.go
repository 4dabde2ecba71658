package product

import (
	"context"
	"strings"
	"time"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	// Upsert creates a product when id is empty and replaces the editable
	// fields of an existing one otherwise.
	Upsert(ctx context.Context, id string, in Input) (*Product, error)
	Delete(ctx context.Context, id string) error
	// InvalidateCatalog drops cached listings after stock or catalog changes.
	InvalidateCatalog(ctx context.Context)
}

type service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
	newID    func() string
}

func NewService(repo Repository, cache Cache, cacheTTL time.Duration) Service {
	if cache == nil {
		cache = NoopCache()
	}
	return &service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
	)

	var cached []Product
	if s.cache.Get(ctx, ListCacheKey, &cached) {
		log.Debug("product list served from cache", zap.Int("count", len(cached)))
		return cached, nil
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	if err := s.cache.Set(ctx, ListCacheKey, products, s.cacheTTL); err != nil {
		log.Warn("failed to cache product list", zap.Error(err))
	}

	log.Info("list products success", zap.Int("count", len(products)))
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.Invalid("product id is required")
	}
	return s.repo.Get(ctx, id)
}

func (s *service) Upsert(ctx context.Context, id string, in Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpsertProduct"),
		zap.String("product_id", id),
	)

	if err := in.Validate(); err != nil {
		log.Warn("invalid product input", zap.Error(err))
		return nil, err
	}

	now := s.now()
	p := &Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
		UpdatedAt:   now,
	}

	if id == "" {
		p.ID = s.newID()
		p.CreatedAt = now
		if err := s.repo.Create(ctx, p); err != nil {
			log.Error("failed to create product", zap.Error(err))
			return nil, err
		}
		log.Info("product created", zap.String("new_product_id", p.ID))
	} else {
		if err := s.repo.Update(ctx, p); err != nil {
			log.Warn("failed to update product", zap.Error(err))
			return nil, err
		}
		log.Info("product updated")
	}

	s.InvalidateCatalog(ctx)
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.Invalid("product id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deleted", zap.String("product_id", id))
	s.InvalidateCatalog(ctx)
	return nil
}

func (s *service) InvalidateCatalog(ctx context.Context) {
	if err := s.cache.Delete(ctx, ListCacheKey); err != nil {
		logger.FromCtx(ctx).Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
