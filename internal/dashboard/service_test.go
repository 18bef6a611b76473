package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	residents int64
	vehicles  int64
	events    int64
	balance   int64
	overdue   int64
	tickets   int64
	visitors  int64
	calls     atomic.Int64
	err       error
}

func (s *stubStats) get(v int64) (int64, error) {
	s.calls.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	return v, nil
}

func (s *stubStats) CountResidents(ctx context.Context, societyID int64) (int64, error) {
	return s.get(s.residents)
}

func (s *stubStats) CountWhitelistedVehicles(ctx context.Context, societyID int64) (int64, error) {
	return s.get(s.vehicles)
}

func (s *stubStats) CountGateEventsSince(ctx context.Context, societyID int64, since time.Time) (int64, error) {
	return s.get(s.events)
}

func (s *stubStats) OutstandingBalance(ctx context.Context, societyID int64) (int64, error) {
	return s.get(s.balance)
}

func (s *stubStats) CountOverdueInvoices(ctx context.Context, societyID int64) (int64, error) {
	return s.get(s.overdue)
}

func (s *stubStats) CountOpenTickets(ctx context.Context, societyID int64) (int64, error) {
	return s.get(s.tickets)
}

func (s *stubStats) CountCheckedInVisitors(ctx context.Context, societyID int64) (int64, error) {
	return s.get(s.visitors)
}

func TestSummaryAggregates(t *testing.T) {
	stats := &stubStats{residents: 120, vehicles: 45, events: 300, balance: 987650, overdue: 3, tickets: 7, visitors: 4}
	svc := NewService(stats, nil, nil)

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(120), summary.Residents)
	require.Equal(t, int64(45), summary.VehiclesWhitelist)
	require.Equal(t, int64(300), summary.GateEventsToday)
	require.Equal(t, int64(987650), summary.OutstandingMinor)
	require.Equal(t, int64(3), summary.OverdueInvoices)
	require.Equal(t, int64(7), summary.OpenTickets)
	require.Equal(t, int64(4), summary.VisitorsOnPremises)
}

func TestSummaryPropagatesErrors(t *testing.T) {
	stats := &stubStats{err: errors.New("db down")}
	svc := NewService(stats, nil, nil)

	_, err := svc.Summary(context.Background(), 1)
	require.Error(t, err)
}

func TestSummaryCaching(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stats := &stubStats{residents: 10}
	svc := NewService(stats, client, nil)
	ctx := context.Background()

	first, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	queries := stats.calls.Load()
	require.Equal(t, int64(7), queries)

	// Second call within the TTL is served from cache.
	second, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first.Residents, second.Residents)
	require.True(t, first.GeneratedAt.Equal(second.GeneratedAt))
	require.Equal(t, queries, stats.calls.Load())

	// A different society misses the cache.
	_, err = svc.Summary(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, queries+7, stats.calls.Load())

	// Expiry forces a recompute.
	mr.FastForward(time.Minute)
	_, err = svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, queries+14, stats.calls.Load())
}
