package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskBillingOverdueSweep flags unpaid invoices past their due date.
	TaskBillingOverdueSweep = "billing:overdue_sweep"
	// TaskTicketEscalation bumps stale helpdesk tickets.
	TaskTicketEscalation = "helpdesk:escalate_stale"
	// TaskVisitorPassExpiry closes lapsed visitor passes.
	TaskVisitorPassExpiry = "visitors:expire_passes"
)

// TicketEscalationPayload carries the staleness threshold.
type TicketEscalationPayload struct {
	OlderThan time.Duration `json:"older_than"`
}

// NewBillingOverdueSweepTask constructs the overdue sweep task.
func NewBillingOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TaskBillingOverdueSweep, nil)
}

// NewTicketEscalationTask constructs the escalation task.
func NewTicketEscalationTask(payload TicketEscalationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTicketEscalation, data), nil
}

// NewVisitorPassExpiryTask constructs the pass expiry task.
func NewVisitorPassExpiryTask() *asynq.Task {
	return asynq.NewTask(TaskVisitorPassExpiry, nil)
}
