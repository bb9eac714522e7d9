package transfers

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

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Transfer, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Transfer, error) {
	if id <= 0 {
		return Transfer{}, fmt.Errorf("invalid transfer id: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Record appends a transfer event and moves the member.
func (s *Service) Record(ctx context.Context, t Transfer) (Transfer, error) {
	if t.MemberID <= 0 {
		return Transfer{}, fmt.Errorf("member is required: %w", httpx.ErrValidation)
	}
	if t.FromUnitID <= 0 || t.ToUnitID <= 0 {
		return Transfer{}, fmt.Errorf("both units are required: %w", httpx.ErrValidation)
	}
	if t.FromUnitID == t.ToUnitID {
		return Transfer{}, fmt.Errorf("transfer within the same unit: %w", httpx.ErrValidation)
	}
	if t.TransferDate.IsZero() {
		return Transfer{}, fmt.Errorf("transfer date is required: %w", httpx.ErrValidation)
	}
	recorded, err := s.repo.Record(ctx, t)
	if err != nil {
		return Transfer{}, err
	}
	s.bump(ctx)
	return recorded, nil
}

// Delete is an admin correction of a mis-entered transfer. It is audited:
// the event log is otherwise append-only.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid transfer id: %w", httpx.ErrValidation)
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "delete",
			Entity:   "transfer",
			EntityID: strconv.FormatInt(deleted.ID, 10),
			Meta: map[string]any{
				"member_id":     deleted.MemberID,
				"from_unit_id":  deleted.FromUnitID,
				"to_unit_id":    deleted.ToUnitID,
				"transfer_date": deleted.TransferDate,
			},
		}); err != nil && s.logger != nil {
			s.logger.Warn("audit transfer delete failed", slog.Any("error", err))
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
