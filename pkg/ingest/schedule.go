package ingest

import (
	"context"
	"time"

	"devpulse/pkg/domain"
)

// Runner is anything that performs one ingestion pass.
type Runner interface {
	Ingest(ctx context.Context) (domain.IngestionResult, error)
}

// RunEvery ingests immediately and then once per interval until ctx is
// cancelled. Each pass is reported to report; failures do not stop the loop.
func RunEvery(ctx context.Context, r Runner, interval time.Duration, report func(domain.IngestionResult, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := r.Ingest(ctx)
		if report != nil {
			report(result, err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
