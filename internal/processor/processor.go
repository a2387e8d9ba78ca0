package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"codeberg.org/snonux/wordhoard/internal/cache"
	"codeberg.org/snonux/wordhoard/internal/lookup"
	"codeberg.org/snonux/wordhoard/internal/metrics"
	"codeberg.org/snonux/wordhoard/internal/tracing"
)

var (
	// ErrRateLimited means the API answered 429
	ErrRateLimited = errors.New("API rate limit exceeded")
	// ErrCallBudgetExhausted means the session used up its call limit
	ErrCallBudgetExhausted = errors.New("API call budget exhausted")
	// ErrServiceUnavailable means a circuit breaker opened after repeated failures
	ErrServiceUnavailable = errors.New("lookup service unavailable")

	errServiceFailure = errors.New("lookup failed")
)

const (
	DefaultWordDelay = 100 * time.Millisecond
	// DefaultBreakerThreshold keeps the breakers off: failed lookups are
	// recorded and the run goes on unless a threshold is configured.
	DefaultBreakerThreshold = 0
)

// Lookuper is the part of the lookup client the processor needs
type Lookuper interface {
	Lookup(ctx context.Context, word string, kind lookup.Kind) lookup.Result
	Stats() lookup.Stats
}

// Deps are the collaborators of a Processor
type Deps struct {
	Client   Lookuper
	Store    cache.Store
	Logger   *slog.Logger
	Recorder *metrics.Recorder
}

// Options control a run
type Options struct {
	// SessionID tags the run; a random one is generated when empty
	SessionID    string
	StartWord    string
	MaxWords     int
	ForceRefresh bool
	WordDelay    time.Duration
	// BreakerThreshold is the number of consecutive failed lookups of one
	// kind that stops the run. Zero disables the breakers.
	BreakerThreshold uint32
}

// DefaultOptions returns the run defaults
func DefaultOptions() Options {
	return Options{
		WordDelay:        DefaultWordDelay,
		BreakerThreshold: DefaultBreakerThreshold,
	}
}

// Processor handles the word lookup loop
type Processor struct {
	client   Lookuper
	store    cache.Store
	logger   *slog.Logger
	recorder *metrics.Recorder
	opts     Options
	limiter  *rate.Limiter
	breakers map[lookup.Kind]*gobreaker.CircuitBreaker
}

// New creates a processor
func New(deps Deps, opts Options) *Processor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "processor")

	limit := rate.Inf
	if opts.WordDelay > 0 {
		limit = rate.Every(opts.WordDelay)
	}

	p := &Processor{
		client:   deps.Client,
		store:    deps.Store,
		logger:   logger,
		recorder: deps.Recorder,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
	}

	if opts.BreakerThreshold > 0 {
		p.breakers = make(map[lookup.Kind]*gobreaker.CircuitBreaker, len(lookup.Kinds))
		for _, kind := range lookup.Kinds {
			p.breakers[kind] = newBreaker(kind, opts.BreakerThreshold, logger)
		}
	}

	return p
}

func newBreaker(kind lookup.Kind, threshold uint32, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: kind.String(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "kind", name, "from", from.String(), "to", to.String())
		},
	})
}

// Run processes words in order and returns the session summary. The
// returned error is nil for a complete run; otherwise it tells why the
// run stopped early and Summary.NextWord holds the resume point.
func (p *Processor) Run(ctx context.Context, words []string) (Summary, error) {
	sessionID := p.opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	summary := Summary{
		SessionID: sessionID,
		Calls:     make(map[lookup.Kind]int, len(lookup.Kinds)),
	}

	if p.opts.MaxWords > 0 && p.opts.MaxWords < len(words) {
		words = words[:p.opts.MaxWords]
		p.logger.Info("Limiting word list", "max_words", p.opts.MaxWords)
	}
	summary.TotalWords = len(words)

	start := 0
	if p.opts.StartWord != "" {
		idx, ok := ResumeIndex(words, p.opts.StartWord)
		if ok {
			p.logger.Info("Resuming from word", "word", words[idx], "index", idx)
		} else {
			p.logger.Warn("Start word not found in word list, starting from beginning", "word", p.opts.StartWord)
		}
		start = idx
	}
	summary.StartIndex = start

	p.logger.Info("Starting lookup session",
		"session_id", summary.SessionID,
		"words", len(words)-start,
		"force_refresh", p.opts.ForceRefresh)

	for idx := start; idx < len(words); idx++ {
		word := words[idx]
		p.logger.Info("Processing word", "word", word, "position", idx+1, "total", len(words))

		reason, err := p.processWord(ctx, word, &summary)
		if err != nil {
			summary.NextWord = word
			summary.StopReason = reason
			summary.Stats = p.client.Stats()
			p.recorder.RecordWord("stopped")
			return summary, err
		}
		summary.WordsProcessed++
		p.recorder.RecordWord("processed")
	}

	summary.StopReason = StopCompleted
	summary.Stats = p.client.Stats()
	return summary, nil
}

// processWord runs every lookup kind for one word
func (p *Processor) processWord(ctx context.Context, word string, summary *Summary) (StopReason, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.word")
	defer span.End()

	for _, kind := range lookup.Kinds {
		if err := ctx.Err(); err != nil {
			p.logger.Info("Process interrupted", "word", word)
			return StopInterrupted, err
		}

		if !p.opts.ForceRefresh {
			cached, err := p.store.Exists(ctx, kind, word)
			if err != nil {
				tracing.RecordError(span, err)
				return StopCacheFailure, err
			}
			p.recorder.RecordCacheAccess(kind.String(), cached)
			if cached {
				p.logger.Debug("Entry already cached, skipping", "word", word, "kind", kind.String())
				summary.Skipped++
				continue
			}
		}

		if p.client.Stats().RemainingCalls <= 0 {
			p.logger.Error("API call budget exhausted, stopping", "word", word)
			return StopBudgetExhausted, ErrCallBudgetExhausted
		}

		if err := p.limiter.Wait(ctx); err != nil {
			p.logger.Info("Process interrupted", "word", word)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return StopInterrupted, ctxErr
			}
			return StopInterrupted, err
		}

		result, err := p.lookup(ctx, word, kind)
		if err != nil {
			p.logger.Error("Lookup service unavailable, stopping", "word", word, "kind", kind.String(), "error", err)
			return StopServiceUnavailable, fmt.Errorf("%w: %s: %v", ErrServiceUnavailable, kind, err)
		}
		summary.Calls[kind]++

		// The result is saved even when the run is being cancelled
		if err := p.store.Save(context.WithoutCancel(ctx), kind, word, result); err != nil {
			tracing.RecordError(span, err)
			return StopCacheFailure, fmt.Errorf("saving %s result for %q: %w", kind, word, err)
		}

		if result.Status == lookup.StatusRateLimited {
			p.logger.Error("Rate limit exceeded, stopping", "word", word, "kind", kind.String())
			return StopRateLimited, ErrRateLimited
		}

		if result.Status == lookup.StatusSuccess {
			summary.Success++
		} else {
			summary.Errors++
		}
	}

	return "", nil
}

// lookup calls the client through the kind's circuit breaker
func (p *Processor) lookup(ctx context.Context, word string, kind lookup.Kind) (lookup.Result, error) {
	cb, ok := p.breakers[kind]
	if !ok {
		return p.client.Lookup(ctx, word, kind), nil
	}

	out, err := cb.Execute(func() (interface{}, error) {
		result := p.client.Lookup(ctx, word, kind)
		if isServiceFailure(result) {
			return result, errServiceFailure
		}
		return result, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return lookup.Result{}, err
	}

	return out.(lookup.Result), nil
}

// IsOrderlyStop reports whether a Run error ends the session with a
// resume point rather than a failure. Nil counts as orderly.
func IsOrderlyStop(err error) bool {
	return err == nil ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrCallBudgetExhausted) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, context.Canceled)
}

// isServiceFailure reports results that point at an unhealthy service
// rather than at the word itself
func isServiceFailure(r lookup.Result) bool {
	return r.Status == lookup.StatusFatalError || r.Status == lookup.StatusTransientError
}
