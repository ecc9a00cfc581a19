package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// Extractor reads the next raw message from the source, blocking until one
// is available or ctx is done.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawMessage, error)
}

// Transformer converts a raw message into an output message.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error)
}

// Loader writes one output message to the destination.
type Loader interface {
	Load(ctx context.Context, msg domain.OutputMessage) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline orchestrates the message-at-a-time extract-transform-load loop.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
	}
}

// WithClock replaces the clock used for backoff sleeps.
func (p *Pipeline) WithClock(c clockwork.Clock) *Pipeline {
	p.clock = c
	return p
}

// Ready reports whether at least one assessment has been published.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run executes the loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("assessment stream started")
	p.metrics.StreamRunning.Set(1)
	defer p.metrics.StreamRunning.Set(0)

	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("assessment stream stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processMessage(ctx, &backoff) {
			return nil
		}
	}
}

// processMessage runs one extract-transform-load cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processMessage(ctx context.Context, backoff *time.Duration) bool {
	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}

	p.metrics.MessagesConsumed.Inc()
	*backoff = initialBackoff

	out, err := p.transformer.Transform(ctx, raw)
	if err != nil {
		// Unassessable requests are skipped and committed, never retried.
		p.logger.Warn("assessment failed, skipping message",
			"error", err,
			"topic", raw.Topic,
			"partition", raw.Partition,
			"offset", raw.Offset,
		)
		p.metrics.StreamErrors.Inc()
		p.commitOffset(ctx, raw)
		return true
	}

	if err := p.loader.Load(ctx, out); err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("publish assessment failed",
			"error", err,
			"topic", raw.Topic,
			"partition", raw.Partition,
			"offset", raw.Offset,
		)
		p.metrics.StreamErrors.Inc()
		return p.backoffOrStop(ctx, backoff)
	}

	p.metrics.MessagesProduced.Inc()
	p.commitOffset(ctx, raw)
	p.ready.Store(true)
	return true
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the context ended first.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !p.sleep(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}
