// Package dashboard aggregates per-society counters for the overview
// screen. The counts fan out concurrently and the result is cached in
// Redis for a short period since the overview is the most hit page.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Summary holds the society overview counters.
type Summary struct {
	SocietyID          int64     `json:"society_id"`
	Residents          int64     `json:"residents"`
	VehiclesWhitelist  int64     `json:"vehicles_whitelisted"`
	GateEventsToday    int64     `json:"gate_events_today"`
	OutstandingMinor   int64     `json:"outstanding_minor"`
	OverdueInvoices    int64     `json:"overdue_invoices"`
	OpenTickets        int64     `json:"open_tickets"`
	VisitorsOnPremises int64     `json:"visitors_on_premises"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// StatsPort exposes the count queries the summary needs.
type StatsPort interface {
	CountResidents(ctx context.Context, societyID int64) (int64, error)
	CountWhitelistedVehicles(ctx context.Context, societyID int64) (int64, error)
	CountGateEventsSince(ctx context.Context, societyID int64, since time.Time) (int64, error)
	OutstandingBalance(ctx context.Context, societyID int64) (int64, error)
	CountOverdueInvoices(ctx context.Context, societyID int64) (int64, error)
	CountOpenTickets(ctx context.Context, societyID int64) (int64, error)
	CountCheckedInVisitors(ctx context.Context, societyID int64) (int64, error)
}

// Service computes and caches society summaries.
type Service struct {
	stats  StatsPort
	cache  *redis.Client
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds Service instance. A nil cache client disables
// caching.
func NewService(stats StatsPort, cache *redis.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{stats: stats, cache: cache, logger: logger, ttl: 30 * time.Second, now: time.Now}
}

func cacheKey(societyID int64) string {
	return fmt.Sprintf("societyhub:dashboard:%d", societyID)
}

// Summary returns the society overview, served from cache when fresh.
func (s *Service) Summary(ctx context.Context, societyID int64) (Summary, error) {
	if s.cache != nil {
		payload, err := s.cache.Get(ctx, cacheKey(societyID)).Bytes()
		if err == nil {
			var cached Summary
			if json.Unmarshal(payload, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("dashboard cache read failed", slog.Any("error", err))
		}
	}

	summary, err := s.compute(ctx, societyID)
	if err != nil {
		return Summary{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey(societyID), payload, s.ttl).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", slog.Any("error", err))
			}
		}
	}
	return summary, nil
}

func (s *Service) compute(ctx context.Context, societyID int64) (Summary, error) {
	now := s.now()
	summary := Summary{SocietyID: societyID, GeneratedAt: now}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fetch func() (int64, error)) {
		g.Go(func() error {
			n, err := fetch()
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&summary.Residents, func() (int64, error) { return s.stats.CountResidents(ctx, societyID) })
	count(&summary.VehiclesWhitelist, func() (int64, error) { return s.stats.CountWhitelistedVehicles(ctx, societyID) })
	count(&summary.GateEventsToday, func() (int64, error) { return s.stats.CountGateEventsSince(ctx, societyID, midnight) })
	count(&summary.OutstandingMinor, func() (int64, error) { return s.stats.OutstandingBalance(ctx, societyID) })
	count(&summary.OverdueInvoices, func() (int64, error) { return s.stats.CountOverdueInvoices(ctx, societyID) })
	count(&summary.OpenTickets, func() (int64, error) { return s.stats.CountOpenTickets(ctx, societyID) })
	count(&summary.VisitorsOnPremises, func() (int64, error) { return s.stats.CountCheckedInVisitors(ctx, societyID) })

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
