// internal/workers/advisory/generate-advice/orchestrator.go
package generateadvice

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/common/metrics"
	"advisory-workers/internal/models"
	smartfallback "advisory-workers/internal/workers/advisory/smart-fallback"
)

type State string

const (
	StateAvailable   State = "AVAILABLE"
	StateUnavailable State = "UNAVAILABLE"
)

// Request carries everything one advisory generation needs.
type Request struct {
	Query     string
	Context   string
	History   []models.ChatMessage
	Tier      models.RiskTolerance
	Sentiment models.MarketSentiment
}

type Outcome struct {
	Text   string
	Source models.ResponseSource
	Route  smartfallback.Route
}

// Orchestrator routes each request to the generator or the fallback engine.
// It starts AVAILABLE; a failed call flips it to UNAVAILABLE and from then on
// requests go straight to the fallback until a probe succeeds. Probes run
// inline, at most once per probe interval across all callers.
type Orchestrator struct {
	gen       Generator
	provider  string
	config    *Config
	logger    logger.Logger
	now       func() time.Time
	available atomic.Bool
	lastProbe atomic.Int64
}

func NewOrchestrator(gen Generator, config *Config, log logger.Logger) *Orchestrator {
	o := &Orchestrator{
		gen:      gen,
		provider: config.Provider,
		config:   config,
		logger:   log,
		now:      time.Now,
	}
	o.available.Store(true)
	metrics.SetGenerationAvailable(true)
	return o
}

func (o *Orchestrator) State() State {
	if o.available.Load() {
		return StateAvailable
	}
	return StateUnavailable
}

func (o *Orchestrator) Available() bool {
	return o.available.Load()
}

// Probe checks the generator's health and records the result.
func (o *Orchestrator) Probe(ctx context.Context) bool {
	o.lastProbe.Store(o.now().UnixNano())
	ctx, cancel := context.WithTimeout(ctx, o.config.ProbeTimeout)
	defer cancel()

	err := o.gen.Health(ctx)
	o.setAvailable(err == nil)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues(o.provider).Inc()
		o.logger.Warn("generation probe failed", map[string]interface{}{"provider": o.provider, "error": err})
		return false
	}
	return true
}

// Respond never fails: any generation problem yields a fallback response.
func (o *Orchestrator) Respond(ctx context.Context, req Request) Outcome {
	if !o.available.Load() && !o.probeIfDue(ctx) {
		return o.fallback(req)
	}

	text, err := o.generate(ctx, req)
	if err != nil && ctx.Err() != nil {
		// the caller went away; says nothing about the provider
		return o.fallback(req)
	}
	if err != nil {
		metrics.ProviderFailures.WithLabelValues(o.provider).Inc()
		o.logger.Warn("generation failed, using fallback", map[string]interface{}{"provider": o.provider, "error": err})
		o.lastProbe.Store(o.now().UnixNano())
		o.setAvailable(false)
		return o.fallback(req)
	}
	return Outcome{Text: text, Source: models.SourceGenerated}
}

// probeIfDue runs a probe when the interval has elapsed and no other caller
// has claimed it. A cancelled caller never claims the slot.
func (o *Orchestrator) probeIfDue(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	last := o.lastProbe.Load()
	now := o.now().UnixNano()
	if time.Duration(now-last) < o.config.ProbeInterval {
		return false
	}
	if !o.lastProbe.CompareAndSwap(last, now) {
		return false
	}
	return o.Probe(ctx)
}

func (o *Orchestrator) generate(ctx context.Context, req Request) (string, error) {
	genReq := models.GenerationRequest{
		SystemPrompt: SystemPrompt,
		Prompt:       BuildPrompt(req.Query, req.Context),
		History:      trimHistory(req.History, o.config.HistoryLimit),
	}

	var text string
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
		defer cancel()

		out, err := o.gen.Generate(callCtx, genReq)
		if err != nil {
			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		text = out
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = o.config.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(o.config.MaxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return text, nil
}

func (o *Orchestrator) fallback(req Request) Outcome {
	res := smartfallback.Respond(req.Query, req.Tier, req.Sentiment)
	metrics.FallbackRoutes.WithLabelValues(string(res.Route)).Inc()
	return Outcome{Text: res.Text, Source: models.SourceFallback, Route: res.Route}
}

func (o *Orchestrator) setAvailable(ok bool) {
	if o.available.Swap(ok) != ok {
		o.logger.Info("generation state changed", map[string]interface{}{"state": o.State()})
	}
	metrics.SetGenerationAvailable(ok)
}
