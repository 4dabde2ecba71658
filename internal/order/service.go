package order

import (
	"context"
	"strings"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/logger"

	"go.uber.org/zap"
)

// Service is the read side of the ledger. Orders are written only by the
// checkout coordinator.
type Service interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListOrders"),
	)

	orders, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list orders", zap.Error(err))
		return nil, err
	}

	log.Info("list orders success", zap.Int("count", len(orders)))
	return orders, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetOrder"),
		zap.String("order_id", id),
	)

	if strings.TrimSpace(id) == "" {
		return nil, apperror.Invalid("order id is required")
	}

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Warn("failed to get order", zap.Error(err))
		return nil, err
	}
	return o, nil
}
