package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/societyhub/societyhub/internal/billing"
	"github.com/societyhub/societyhub/internal/helpdesk"
	"github.com/societyhub/societyhub/internal/visitors"
)

// DefaultEscalationAge is how long a ticket may sit untouched before
// the nightly sweep escalates it.
const DefaultEscalationAge = 48 * time.Hour

// Sweeper holds the services the periodic maintenance tasks drive.
type Sweeper struct {
	Billing  *billing.Service
	Helpdesk *helpdesk.Service
	Visitors *visitors.Service
	Logger   *slog.Logger
}

// HandleBillingOverdueSweep processes TaskBillingOverdueSweep tasks.
func (s *Sweeper) HandleBillingOverdueSweep(ctx context.Context, t *asynq.Task) error {
	n, err := s.Billing.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	s.Logger.Info("billing overdue sweep done", slog.Int64("flagged", n))
	return nil
}

// HandleTicketEscalation processes TaskTicketEscalation tasks.
func (s *Sweeper) HandleTicketEscalation(ctx context.Context, t *asynq.Task) error {
	payload := TicketEscalationPayload{OlderThan: DefaultEscalationAge}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.OlderThan <= 0 {
		payload.OlderThan = DefaultEscalationAge
	}
	n, err := s.Helpdesk.EscalateStale(ctx, payload.OlderThan)
	if err != nil {
		return err
	}
	s.Logger.Info("ticket escalation done", slog.Int("escalated", n))
	return nil
}

// HandleVisitorPassExpiry processes TaskVisitorPassExpiry tasks.
func (s *Sweeper) HandleVisitorPassExpiry(ctx context.Context, t *asynq.Task) error {
	n, err := s.Visitors.SweepExpired(ctx)
	if err != nil {
		return err
	}
	s.Logger.Info("visitor pass expiry done", slog.Int64("expired", n))
	return nil
}

// DefaultCron wires the standing schedule: invoices are swept hourly,
// passes every ten minutes, tickets nightly.
func (s *Sweeper) DefaultCron() ([]CronRegistration, error) {
	escalation, err := NewTicketEscalationTask(TicketEscalationPayload{OlderThan: DefaultEscalationAge})
	if err != nil {
		return nil, err
	}
	return []CronRegistration{
		{Spec: "0 * * * *", Task: NewBillingOverdueSweepTask()},
		{Spec: "*/10 * * * *", Task: NewVisitorPassExpiryTask()},
		{Spec: "30 2 * * *", Task: escalation},
	}, nil
}

// Handlers returns the task handler set for worker registration.
func (s *Sweeper) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskBillingOverdueSweep, Handler: s.HandleBillingOverdueSweep},
		{Type: TaskTicketEscalation, Handler: s.HandleTicketEscalation},
		{Type: TaskVisitorPassExpiry, Handler: s.HandleVisitorPassExpiry},
	}
}
