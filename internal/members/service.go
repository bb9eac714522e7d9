package members

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/benfund/benfund/internal/platform/httpx"
	"github.com/benfund/benfund/internal/shared"
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

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Member, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Member, error) {
	if id <= 0 {
		return Member{}, fmt.Errorf("invalid member id: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, m Member) (Member, error) {
	if m.SubscriptionStartDate.Before(m.AllotmentDate) {
		return Member{}, fmt.Errorf("subscription start precedes allotment date: %w", httpx.ErrValidation)
	}
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return Member{}, err
	}
	s.bump(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, m Member) error {
	if id <= 0 {
		return fmt.Errorf("invalid member id: %w", httpx.ErrValidation)
	}
	if err := s.repo.Update(ctx, id, m); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Close discharges a member. Payout entry for retirement and death cases is a
// separate clerical step in the payouts module.
func (s *Service) Close(ctx context.Context, id int64, reason string, discharge time.Time) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == StatusClosed {
		return fmt.Errorf("member %s: %w", m.Code, shared.ErrMemberClosed)
	}
	if !ValidReason(reason) {
		return fmt.Errorf("unknown closure reason %q: %w", reason, httpx.ErrValidation)
	}
	if discharge.Before(m.AllotmentDate) {
		return fmt.Errorf("discharge precedes allotment date: %w", httpx.ErrValidation)
	}
	if err := s.repo.SetStatus(ctx, id, StatusClosed, reason, &discharge); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Reopen reverses an erroneous closure.
func (s *Service) Reopen(ctx context.Context, id int64) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.Status != StatusClosed {
		return fmt.Errorf("member %s: %w", m.Code, shared.ErrMemberOpen)
	}
	if err := s.repo.SetStatus(ctx, id, StatusOpened, "", nil); err != nil {
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
