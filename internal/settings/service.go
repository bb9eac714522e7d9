package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/benfund/benfund/internal/platform/httpx"
)

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

func (s *Service) All(ctx context.Context) ([]Setting, error) {
	return s.repo.All(ctx)
}

// SubscriptionRate returns the current monthly subscription amount. The rate
// is handed to the report engine as an explicit parameter; the engine never
// reads it ambiently.
func (s *Service) SubscriptionRate(ctx context.Context) (float64, error) {
	setting, err := s.repo.Get(ctx, KeySubscriptionAmount)
	if errors.Is(err, httpx.ErrNotFound) {
		return 0, fmt.Errorf("subscription amount not configured: %w", httpx.ErrConflict)
	}
	if err != nil {
		return 0, err
	}
	rate, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("subscription amount %q is not a positive number: %w", setting.Value, httpx.ErrConflict)
	}
	return rate, nil
}

// Signature returns the signature block printed at the foot of reports.
// Missing keys yield empty lines, not errors.
func (s *Service) Signature(ctx context.Context) (SignatureBlock, error) {
	var block SignatureBlock
	left, err := s.repo.Get(ctx, KeySignatureLeft)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return SignatureBlock{}, err
	}
	block.Left = left.Value
	right, err := s.repo.Get(ctx, KeySignatureRight)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return SignatureBlock{}, err
	}
	block.Right = right.Value
	return block, nil
}

func (s *Service) Set(ctx context.Context, key, value string) (Setting, error) {
	if !KnownKey(key) {
		return Setting{}, fmt.Errorf("unknown setting %q: %w", key, httpx.ErrValidation)
	}
	if key == KeySubscriptionAmount {
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil || rate <= 0 {
			return Setting{}, fmt.Errorf("subscription amount must be a positive number: %w", httpx.ErrValidation)
		}
	}
	setting, err := s.repo.Upsert(ctx, key, value)
	if err != nil {
		return Setting{}, err
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("report cache bump failed", slog.Any("error", err))
		}
	}
	return setting, nil
}
