package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/devportal/internal/domain"
)

// Deliverer sends a rendered email.
type Deliverer interface {
	Deliver(ctx context.Context, e domain.Email) error
}

// EmailWorker delivers queued emails. A returned error makes River retry
// the job until EmailJobArgs.InsertOpts runs out of attempts.
type EmailWorker struct {
	river.WorkerDefaults[EmailJobArgs]
	deliverer Deliverer
}

// Work delivers a single email job.
func (w *EmailWorker) Work(ctx context.Context, job *river.Job[EmailJobArgs]) error {
	slog.InfoContext(ctx, "delivering email",
		"to", job.Args.To,
		"subject", job.Args.Subject,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)

	if err := w.deliverer.Deliver(ctx, job.Args.email()); err != nil {
		slog.ErrorContext(ctx, "email delivery failed",
			"to", job.Args.To,
			"job_id", job.ID,
			"attempt", job.Attempt,
			"error", err,
		)
		return err
	}
	return nil
}
