// internal/workers/advisory/advise-user/pipeline.go
package adviseuser

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/common/metrics"
	"advisory-workers/internal/common/observability"
	"advisory-workers/internal/models"
	"advisory-workers/internal/store"
	assemblecontext "advisory-workers/internal/workers/advisory/assemble-context"
	assembleresponse "advisory-workers/internal/workers/advisory/assemble-response"
	extractsymbols "advisory-workers/internal/workers/advisory/extract-symbols"
	fetchmarketdata "advisory-workers/internal/workers/advisory/fetch-market-data"
	generateadvice "advisory-workers/internal/workers/advisory/generate-advice"
	guardrailcheck "advisory-workers/internal/workers/advisory/guardrail-check"
	smartfallback "advisory-workers/internal/workers/advisory/smart-fallback"
)

// KnowledgeSearcher is the retrieval leg.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, k int) ([]models.RetrievedDocument, error)
}

// ProfileSource loads what the caller did not supply.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	RecentMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
}

// Deps are the pipeline collaborators. Profiles, Sink and Obs are optional.
type Deps struct {
	Searcher     KnowledgeSearcher
	Market       fetchmarketdata.Provider
	Orchestrator *generateadvice.Orchestrator
	Profiles     ProfileSource
	Sink         store.Sink
	Obs          *observability.Observability
}

type Request struct {
	UserID  string
	Message string
	Profile *models.UserProfile
	History []models.ChatMessage
}

type Result struct {
	Response           models.AdvisoryResponse
	GuardrailViolation bool
	BlockedTopic       string
	Route              smartfallback.Route
	Symbols            []string
	RetrievalAvailable bool
	Suggestions        []string
}

// Pipeline answers one advisory message end to end. Each Run is independent;
// the only state shared across runs is the orchestrator's availability flag.
type Pipeline struct {
	config    *Config
	deps      Deps
	extractor *extractsymbols.Extractor
	fetcher   *fetchmarketdata.Fetcher
	assembler *assembleresponse.Assembler
	logger    logger.Logger
}

func NewPipeline(config *Config, deps Deps, log logger.Logger) *Pipeline {
	return &Pipeline{
		config:    config,
		deps:      deps,
		extractor: extractsymbols.NewExtractor(config.Allowlist, config.MaxSymbols),
		fetcher:   fetchmarketdata.NewFetcher(deps.Market, log),
		assembler: assembleresponse.NewAssembler(),
		logger:    log,
	}
}

// gathered holds the results of the fan-out. Each goroutine writes only its
// own fields.
type gathered struct {
	profile   *models.UserProfile
	history   []models.ChatMessage
	docs      []models.RetrievedDocument
	retrieved bool
	market    fetchmarketdata.Snapshot
}

// Run returns INVALID_INPUT for an empty message and the context error when
// the request is cancelled. Provider failures never surface; they degrade.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "advisory.pipeline", attribute.String("user.id", req.UserID))
	var runErr error
	defer func() { observability.EndSpan(span, runErr) }()

	message, err := guardrailcheck.CheckInput(req.Message)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeGuardrailViolation {
			return p.blocked(ctx, req, stdErr), nil
		}
		runErr = err
		return nil, err
	}

	symbols := p.extractor.Extract(message)
	g, err := p.gather(ctx, req, message, symbols)
	if err != nil {
		runErr = err
		return nil, err
	}

	payload := assemblecontext.Assemble(g.profile, g.docs, g.market.Quotes)

	genStart := time.Now()
	outcome := p.deps.Orchestrator.Respond(ctx, generateadvice.Request{
		Query:     message,
		Context:   payload.String(),
		History:   g.history,
		Tier:      g.profile.Tier(),
		Sentiment: g.market.Sentiment,
	})
	p.deps.Obs.RecordStage(ctx, "generate", time.Since(genStart), outcome.Source == models.SourceGenerated)
	if err := ctx.Err(); err != nil {
		runErr = err
		return nil, err
	}

	assembled := p.assembler.Assemble(assembleresponse.Request{
		UserID:         req.UserID,
		Message:        message,
		Text:           outcome.Text,
		Source:         outcome.Source,
		Documents:      g.docs,
		MarketDataUsed: len(g.market.Quotes) > 0,
		Sentiment:      g.market.Sentiment,
	})
	metrics.AdvisoryResponses.WithLabelValues(string(assembled.Response.Source)).Inc()
	p.persist(ctx, assembled.Event)

	span.SetAttributes(attribute.String("advisory.source", string(outcome.Source)))
	return &Result{
		Response:           assembled.Response,
		Route:              outcome.Route,
		Symbols:            symbols,
		RetrievalAvailable: g.retrieved,
		Suggestions:        FollowUps(g.profile),
	}, nil
}

// gather runs retrieval, market data and profile loading concurrently and
// waits for all of them.
func (p *Pipeline) gather(ctx context.Context, req Request, message string, symbols []string) (*gathered, error) {
	g := &gathered{profile: req.Profile, history: req.History}
	eg, gctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		start := time.Now()
		sctx, cancel := context.WithTimeout(gctx, p.config.RetrievalWait)
		defer cancel()
		docs, err := p.deps.Searcher.Search(sctx, message, p.config.TopK)
		p.deps.Obs.RecordStage(gctx, "retrieve", time.Since(start), err == nil)
		if err != nil {
			metrics.ProviderFailures.WithLabelValues("elasticsearch").Inc()
			p.logger.Warn("retrieval unavailable, continuing without documents", map[string]interface{}{"error": err})
			g.docs = []models.RetrievedDocument{}
			return nil
		}
		g.docs, g.retrieved = docs, true
		return nil
	})

	eg.Go(func() error {
		start := time.Now()
		mctx, cancel := context.WithTimeout(gctx, p.config.MarketWait)
		defer cancel()
		g.market = p.fetcher.Fetch(mctx, symbols, true)
		p.deps.Obs.RecordStage(gctx, "market", time.Since(start), !g.market.Unavailable)
		return nil
	})

	if p.deps.Profiles != nil && req.UserID != "" && (req.Profile == nil || req.History == nil) {
		eg.Go(func() error {
			p.loadUser(gctx, req, g)
			return nil
		})
	}

	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Pipeline) loadUser(ctx context.Context, req Request, g *gathered) {
	if req.Profile == nil {
		profile, err := p.deps.Profiles.GetProfile(ctx, req.UserID)
		if err != nil {
			p.logger.Warn("profile unavailable", map[string]interface{}{"userId": req.UserID, "error": err})
		} else {
			g.profile = profile
		}
	}
	if req.History == nil && p.config.HistoryLimit > 0 {
		history, err := p.deps.Profiles.RecentMessages(ctx, req.UserID, p.config.HistoryLimit)
		if err != nil {
			p.logger.Warn("chat history unavailable", map[string]interface{}{"userId": req.UserID, "error": err})
		} else {
			g.history = history
		}
	}
}

// blocked short-circuits a guardrail violation: no retrieval, market data or
// generation runs.
func (p *Pipeline) blocked(ctx context.Context, req Request, violation *apperrors.StandardError) *Result {
	topic, _ := violation.Metadata["topic"].(string)
	p.logger.Warn("message blocked by guardrail", map[string]interface{}{"userId": req.UserID, "topic": topic})

	assembled := p.assembler.Assemble(assembleresponse.Request{
		UserID:    req.UserID,
		Message:   guardrailcheck.Sanitize(req.Message),
		Text:      violation.Message,
		Source:    models.SourceFallback,
		Sentiment: models.SentimentNeutral,
	})
	metrics.AdvisoryResponses.WithLabelValues(string(assembled.Response.Source)).Inc()
	p.persist(ctx, assembled.Event)

	return &Result{
		Response:           assembled.Response,
		GuardrailViolation: true,
		BlockedTopic:       topic,
		Symbols:            []string{},
		Suggestions:        FollowUps(req.Profile),
	}
}

// persist is best effort: failures are logged and never change the response.
func (p *Pipeline) persist(ctx context.Context, event models.PersistenceEvent) {
	if p.deps.Sink == nil || !p.config.PersistChat {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.PersistTimeout)
	defer cancel()
	if err := p.deps.Sink.Persist(pctx, event); err != nil {
		p.logger.Warn("failed to persist advisory response", map[string]interface{}{
			"responseId": event.Response.ResponseID,
			"error":      err,
		})
	}
}
