package ai

import (
	"context"

	"mychatme/internal/domain/ports/adapter"
)

// limitedCompleter bounds concurrent provider calls with a shared
// semaphore so one chatty client cannot starve the rest.
type limitedCompleter struct {
	inner adapter.Completer
	sem   chan struct{}
}

func limitCompleter(inner adapter.Completer, sem chan struct{}) adapter.Completer {
	if sem == nil {
		return inner
	}
	return &limitedCompleter{inner: inner, sem: sem}
}

func (l *limitedCompleter) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, messages)
}
