package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/billing"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/pkg/queue"
)

// InvoiceProcessor consumes invoice issue jobs: loads the draft, marks it
// issued, retries through the queue on failure.
type InvoiceProcessor struct {
	invoices *billing.Repository
	queue    *queue.Queue
	logger   *zap.Logger
}

// NewInvoiceProcessor creates an invoice issue processor.
func NewInvoiceProcessor(invoices *billing.Repository, q *queue.Queue, logger *zap.Logger) *InvoiceProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceProcessor{invoices: invoices, queue: q, logger: logger}
}

// Process executes one invoice issue job.
func (p *InvoiceProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeInvoiceIssue {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.InvoiceIssuePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	inv, err := p.invoices.GetByID(ctx, payload.TenantID, payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("invoice not found: %s", payload.InvoiceID)
	}
	if inv.Status != models.InvoiceStatusDraft {
		p.logger.Info("invoice already issued", zap.String("invoice_id", inv.ID.String()))
		return nil
	}

	if err := p.invoices.MarkIssued(ctx, payload.TenantID, payload.InvoiceID, time.Now()); err != nil {
		return fmt.Errorf("mark issued: %w", err)
	}
	p.logger.Info("invoice issued", zap.String("invoice_id", payload.InvoiceID.String()), zap.String("tenant_id", payload.TenantID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *InvoiceProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("invoice worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
