package content

import (
	"context"
	"strings"
	"time"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service[T Entry] interface {
	Kind() string
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, e T) (T, error)
	Update(ctx context.Context, id string, e T) (T, error)
	Delete(ctx context.Context, id string) error
}

type service[T Entry] struct {
	kind  string
	repo  Repository[T]
	now   func() time.Time
	newID func() string
}

func NewService[T Entry](kind string, repo Repository[T]) Service[T] {
	return &service[T]{
		kind:  kind,
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *service[T]) Kind() string { return s.kind }

func (s *service[T]) log(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", method),
		zap.String("kind", s.kind),
	)
}

func (s *service[T]) List(ctx context.Context) ([]T, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		s.log(ctx, "ListContent").Error("failed to list content", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (s *service[T]) Get(ctx context.Context, id string) (T, error) {
	if strings.TrimSpace(id) == "" {
		var zero T
		return zero, apperror.Invalid("id is required")
	}
	return s.repo.Get(ctx, id)
}

func (s *service[T]) Create(ctx context.Context, e T) (T, error) {
	log := s.log(ctx, "CreateContent")
	var zero T

	if err := e.Validate(); err != nil {
		return zero, err
	}

	now := s.now()
	m := e.meta()
	m.ID = s.newID()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := s.repo.Create(ctx, e); err != nil {
		log.Error("failed to create content", zap.Error(err))
		return zero, err
	}

	log.Info("content created", zap.String("id", m.ID))
	return e, nil
}

func (s *service[T]) Update(ctx context.Context, id string, e T) (T, error) {
	log := s.log(ctx, "UpdateContent")
	var zero T

	if strings.TrimSpace(id) == "" {
		return zero, apperror.Invalid("id is required for updates")
	}
	if err := e.Validate(); err != nil {
		return zero, err
	}

	m := e.meta()
	m.ID = id
	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, e); err != nil {
		log.Warn("failed to update content", zap.String("id", id), zap.Error(err))
		return zero, err
	}

	log.Info("content updated", zap.String("id", id))
	return e, nil
}

func (s *service[T]) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.Invalid("id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx, "DeleteContent").Info("content deleted", zap.String("id", id))
	return nil
}
