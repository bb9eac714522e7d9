package reports

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/benfund/benfund/internal/observability"
)

// Service builds report datasets from a fresh snapshot, caching the
// assembled result until the next mutation bumps the cache version.
type Service struct {
	loader  *Loader
	cache   *Cache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService constructs the report service.
func NewService(loader *Loader, cache *Cache, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{loader: loader, cache: cache, metrics: metrics, logger: logger}
}

// Movement builds the unit movement statement for the period.
func (s *Service) Movement(ctx context.Context, period Period) (MovementReport, error) {
	var report MovementReport
	err := s.fetch(ctx, "movement", []string{period.From.String(), period.To.String()}, &report, func(ctx context.Context) (interface{}, error) {
		snap, sig, warnings, err := s.loader.Load(ctx, period)
		if err != nil {
			return nil, err
		}
		return BuildMovement(snap, period, sig, warnings), nil
	})
	return report, err
}

// Dues builds the member dues statement, optionally filtered to one unit.
func (s *Service) Dues(ctx context.Context, period Period, unitID int64) (DuesReport, error) {
	var report DuesReport
	parts := []string{period.From.String(), period.To.String(), strconv.FormatInt(unitID, 10)}
	err := s.fetch(ctx, "dues", parts, &report, func(ctx context.Context) (interface{}, error) {
		snap, sig, warnings, err := s.loader.Load(ctx, period)
		if err != nil {
			return nil, err
		}
		return BuildDues(snap, period, unitID, sig, warnings), nil
	})
	return report, err
}

// Collections builds the subscription collection statement for the period.
func (s *Service) Collections(ctx context.Context, period Period) (CollectionsReport, error) {
	var report CollectionsReport
	err := s.fetch(ctx, "collections", []string{period.From.String(), period.To.String()}, &report, func(ctx context.Context) (interface{}, error) {
		snap, sig, warnings, err := s.loader.Load(ctx, period)
		if err != nil {
			return nil, err
		}
		return BuildCollections(snap, period, sig, warnings), nil
	})
	return report, err
}

func (s *Service) fetch(ctx context.Context, kind string, keyParts []string, dest interface{}, build func(context.Context) (interface{}, error)) error {
	if s == nil || s.loader == nil {
		return errors.New("reports: service not initialised")
	}
	timed := func(ctx context.Context) (interface{}, error) {
		start := time.Now()
		value, err := build(ctx)
		if err == nil {
			s.metrics.ObserveReportBuild(kind, time.Since(start))
		}
		return value, err
	}

	key, err := s.cache.BuildKey(ctx, append([]string{"reports", kind}, keyParts...)...)
	if err != nil {
		// A broken cache degrades to a direct build, not a failed report.
		if s.logger != nil {
			s.logger.Warn("report cache unavailable", slog.Any("error", err))
		}
		value, err := timed(ctx)
		if err != nil {
			return err
		}
		return jsonRoundTrip(value, dest)
	}
	return s.cache.FetchJSON(ctx, key, dest, timed)
}

func jsonRoundTrip(value, dest interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
