package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/societyhub/societyhub/internal/shared"
)

// RepositoryPort defines data access methods for invoices and payments.
type RepositoryPort interface {
	ListInvoices(ctx context.Context, societyID int64, status string, limit, offset int) ([]Invoice, error)
	CountInvoices(ctx context.Context, societyID int64, status string) (int, error)
	GetInvoice(ctx context.Context, societyID, id int64) (Invoice, error)
	CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	ApplyPayment(ctx context.Context, p Payment, newStatus string) (Invoice, error)
	ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// Auditor records administrative mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles invoicing business logic.
type Service struct {
	repo    RepositoryPort
	auditor Auditor
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, auditor Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, auditor: auditor, logger: logger, now: time.Now}
}

var validMethods = map[string]struct{}{"cash": {}, "upi": {}, "bank_transfer": {}, "cheque": {}}

// ListInvoices returns a page of invoices for a society, optionally
// filtered by status.
func (s *Service) ListInvoices(ctx context.Context, societyID int64, status string, page, perPage int) ([]Invoice, shared.Pagination, error) {
	total, err := s.repo.CountInvoices(ctx, societyID, status)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	p := shared.NewPagination(page, perPage, total)
	invoices, err := s.repo.ListInvoices(ctx, societyID, status, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return invoices, p, nil
}

// GetInvoice returns one invoice with its payments.
func (s *Service) GetInvoice(ctx context.Context, societyID, id int64) (Invoice, []Payment, error) {
	inv, err := s.repo.GetInvoice(ctx, societyID, id)
	if err != nil {
		return Invoice{}, nil, err
	}
	payments, err := s.repo.ListPayments(ctx, inv.ID)
	if err != nil {
		return Invoice{}, nil, err
	}
	return inv, payments, nil
}

// Issue raises a new invoice.
func (s *Service) Issue(ctx context.Context, actorID int64, inv Invoice) (Invoice, error) {
	inv.UnitLabel = strings.TrimSpace(inv.UnitLabel)
	if inv.UnitLabel == "" {
		return Invoice{}, fmt.Errorf("%w: unit label required", shared.ErrValidation)
	}
	inv.Description = strings.TrimSpace(inv.Description)
	if inv.Description == "" {
		return Invoice{}, fmt.Errorf("%w: description required", shared.ErrValidation)
	}
	if inv.AmountMinor <= 0 {
		return Invoice{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	inv.Currency = strings.ToUpper(strings.TrimSpace(inv.Currency))
	if len(inv.Currency) != 3 {
		return Invoice{}, fmt.Errorf("%w: currency must be a 3-letter code", shared.ErrValidation)
	}
	if inv.DueDate.Before(s.now()) {
		return Invoice{}, fmt.Errorf("%w: due date must be in the future", shared.ErrValidation)
	}
	created, err := s.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return Invoice{}, err
	}
	s.audit(ctx, actorID, "issue_invoice", created.ID, map[string]any{
		"unit":   created.UnitLabel,
		"amount": FormatAmount(created.AmountMinor, created.Currency),
	})
	return created, nil
}

// RecordPayment applies a payment to an invoice and derives its new
// status. Overpayment is rejected rather than carried as credit.
func (s *Service) RecordPayment(ctx context.Context, actorID, societyID int64, p Payment) (Invoice, error) {
	if p.AmountMinor <= 0 {
		return Invoice{}, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}
	p.Method = strings.TrimSpace(strings.ToLower(p.Method))
	if _, ok := validMethods[p.Method]; !ok {
		return Invoice{}, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, p.Method)
	}

	inv, err := s.repo.GetInvoice(ctx, societyID, p.InvoiceID)
	if err != nil {
		return Invoice{}, err
	}
	switch inv.Status {
	case StatusPaid:
		return Invoice{}, fmt.Errorf("%w: invoice already paid", shared.ErrConflict)
	case StatusVoid:
		return Invoice{}, fmt.Errorf("%w: invoice is void", shared.ErrConflict)
	}
	if p.AmountMinor > inv.Outstanding() {
		return Invoice{}, fmt.Errorf("%w: payment exceeds outstanding balance %s",
			shared.ErrValidation, FormatAmount(inv.Outstanding(), inv.Currency))
	}

	newStatus := StatusPartiallyPaid
	if inv.PaidMinor+p.AmountMinor >= inv.AmountMinor {
		newStatus = StatusPaid
	}
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = s.now()
	}
	updated, err := s.repo.ApplyPayment(ctx, p, newStatus)
	if err != nil {
		return Invoice{}, err
	}
	s.audit(ctx, actorID, "record_payment", updated.ID, map[string]any{
		"amount": FormatAmount(p.AmountMinor, updated.Currency),
		"method": p.Method,
		"status": updated.Status,
	})
	return updated, nil
}

// Void cancels an invoice that has received no payments.
func (s *Service) Void(ctx context.Context, actorID, societyID, id int64) error {
	inv, err := s.repo.GetInvoice(ctx, societyID, id)
	if err != nil {
		return err
	}
	if inv.PaidMinor > 0 {
		return fmt.Errorf("%w: invoice has recorded payments", shared.ErrConflict)
	}
	if inv.Status == StatusVoid {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusVoid); err != nil {
		return err
	}
	s.audit(ctx, actorID, "void_invoice", id, nil)
	return nil
}

// SweepOverdue marks unpaid invoices past their due date. Run from the
// job scheduler.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("marked invoices overdue", slog.Int64("count", n))
	}
	return n, nil
}

func (s *Service) audit(ctx context.Context, actorID int64, action string, invoiceID int64, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "invoice",
		EntityID: strconv.FormatInt(invoiceID, 10),
		Meta:     meta,
	}
	if err := s.auditor.Record(ctx, log); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
