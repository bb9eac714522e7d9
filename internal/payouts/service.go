package payouts

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/benfund/benfund/internal/platform/httpx"
	"github.com/benfund/benfund/internal/shared"
)

type auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo   Repository
	audit  auditor
	logger *slog.Logger
}

func NewService(repo Repository, audit auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Payout, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Payout, error) {
	if id <= 0 {
		return Payout{}, fmt.Errorf("invalid payout id: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create registers a payout for a closed member. The closure reason on the
// member record must match the payout reason.
func (s *Service) Create(ctx context.Context, p Payout) (Payout, error) {
	if p.MemberID <= 0 {
		return Payout{}, fmt.Errorf("member is required: %w", httpx.ErrValidation)
	}
	if p.Reason != ReasonRetirement && p.Reason != ReasonDeath {
		return Payout{}, fmt.Errorf("payout reason must be RETIREMENT or DEATH: %w", httpx.ErrValidation)
	}
	if p.GrossAmount <= 0 {
		return Payout{}, fmt.Errorf("gross amount must be positive: %w", httpx.ErrValidation)
	}
	if p.Deductions < 0 {
		return Payout{}, fmt.Errorf("deductions cannot be negative: %w", httpx.ErrValidation)
	}
	p.NetAmount = p.GrossAmount - p.Deductions
	if p.NetAmount < 0 {
		return Payout{}, fmt.Errorf("deductions exceed gross amount: %w", httpx.ErrValidation)
	}
	if p.PayoutDate.IsZero() {
		return Payout{}, fmt.Errorf("payout date is required: %w", httpx.ErrValidation)
	}

	status, reason, err := s.repo.MemberClosure(ctx, p.MemberID)
	if err != nil {
		return Payout{}, err
	}
	if status != "CLOSED" {
		return Payout{}, fmt.Errorf("member %d: %w", p.MemberID, shared.ErrMemberOpen)
	}
	if reason != p.Reason {
		return Payout{}, fmt.Errorf("member closed as %s, payout entered as %s: %w", reason, p.Reason, httpx.ErrConflict)
	}

	p.Reference = uuid.NewString()
	return s.repo.Create(ctx, p)
}

// Delete is an audited admin correction.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid payout id: %w", httpx.ErrValidation)
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "delete",
			Entity:   "payout",
			EntityID: strconv.FormatInt(deleted.ID, 10),
			Meta: map[string]any{
				"member_id":  deleted.MemberID,
				"reference":  deleted.Reference,
				"net_amount": deleted.NetAmount,
			},
		}); err != nil && s.logger != nil {
			s.logger.Warn("audit payout delete failed", slog.Any("error", err))
		}
	}
	return nil
}
