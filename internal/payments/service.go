package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/benfund/benfund/internal/platform/httpx"
	"github.com/benfund/benfund/internal/shared"
)

type cacheBumper interface {
	Bump(ctx context.Context) error
}

type auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo   Repository
	audit  auditor
	cache  cacheBumper
	logger *slog.Logger
}

func NewService(repo Repository, audit auditor, cache cacheBumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Payment, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Payment, error) {
	if id <= 0 {
		return Payment{}, fmt.Errorf("invalid payment id: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Record appends a subscription payment covering one or more months. The
// amount is taken as entered; reports compute expected amounts independently
// and surface any mismatch as balance, so no rate check happens here.
func (s *Service) Record(ctx context.Context, p Payment) (Payment, error) {
	if p.MemberID <= 0 {
		return Payment{}, fmt.Errorf("member is required: %w", httpx.ErrValidation)
	}
	if p.Amount <= 0 {
		return Payment{}, fmt.Errorf("amount must be positive: %w", httpx.ErrValidation)
	}
	if len(p.Months) == 0 {
		return Payment{}, fmt.Errorf("at least one month is required: %w", httpx.ErrValidation)
	}
	for i := 1; i < len(p.Months); i++ {
		if !p.Months[i-1].Before(p.Months[i]) {
			return Payment{}, fmt.Errorf("months must be strictly increasing: %w", httpx.ErrValidation)
		}
	}
	if p.PaymentDate.IsZero() {
		return Payment{}, fmt.Errorf("payment date is required: %w", httpx.ErrValidation)
	}
	recorded, err := s.repo.Record(ctx, p)
	if err != nil {
		return Payment{}, err
	}
	s.bump(ctx)
	return recorded, nil
}

// Delete is an audited admin correction.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid payment id: %w", httpx.ErrValidation)
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "delete",
			Entity:   "payment",
			EntityID: strconv.FormatInt(deleted.ID, 10),
			Meta: map[string]any{
				"member_id":    deleted.MemberID,
				"amount":       deleted.Amount,
				"months":       len(deleted.Months),
				"payment_date": deleted.PaymentDate,
			},
		}); err != nil && s.logger != nil {
			s.logger.Warn("audit payment delete failed", slog.Any("error", err))
		}
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
