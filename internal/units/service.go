package units

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benfund/benfund/internal/platform/httpx"
)

// cacheBumper invalidates cached report datasets after a mutation.
type cacheBumper interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo   Repository
	cache  cacheBumper
	logger *slog.Logger
}

func NewService(repo Repository, cache cacheBumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Unit, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Unit, error) {
	if id <= 0 {
		return Unit{}, fmt.Errorf("invalid unit id: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, unit Unit) (Unit, error) {
	if err := validate(unit); err != nil {
		return Unit{}, err
	}
	created, err := s.repo.Create(ctx, unit)
	if err != nil {
		return Unit{}, err
	}
	s.bump(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, unit Unit) error {
	if id <= 0 {
		return fmt.Errorf("invalid unit id: %w", httpx.ErrValidation)
	}
	if err := validate(unit); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, unit); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid unit id: %w", httpx.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

func validate(u Unit) error {
	if strings.TrimSpace(u.Code) == "" {
		return fmt.Errorf("unit code is required: %w", httpx.ErrValidation)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("unit name is required: %w", httpx.ErrValidation)
	}
	return nil
}
