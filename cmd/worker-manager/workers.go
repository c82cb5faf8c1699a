// cmd/worker-manager/workers.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"advisory-workers/internal/common/aws"
	"advisory-workers/internal/common/camunda"
	"advisory-workers/internal/common/config"
	"advisory-workers/internal/common/database"
	apperrors "advisory-workers/internal/common/errors"
	apphttp "advisory-workers/internal/common/http"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/common/observability"
	"advisory-workers/internal/common/ollama"
	"advisory-workers/internal/common/validation"
	"advisory-workers/internal/store"
	adviseuser "advisory-workers/internal/workers/advisory/advise-user"
	assemblecontext "advisory-workers/internal/workers/advisory/assemble-context"
	assembleresponse "advisory-workers/internal/workers/advisory/assemble-response"
	extractsymbols "advisory-workers/internal/workers/advisory/extract-symbols"
	fetchmarketdata "advisory-workers/internal/workers/advisory/fetch-market-data"
	generateadvice "advisory-workers/internal/workers/advisory/generate-advice"
	guardrailcheck "advisory-workers/internal/workers/advisory/guardrail-check"
	retrieveknowledge "advisory-workers/internal/workers/advisory/retrieve-knowledge"
	smartfallback "advisory-workers/internal/workers/advisory/smart-fallback"
	projectgoal "advisory-workers/internal/workers/planning/project-goal"
	requiredsip "advisory-workers/internal/workers/planning/required-sip"
	summarizeportfolio "advisory-workers/internal/workers/planning/summarize-portfolio"
	"advisory-workers/pkg/registry"
)

// deps are the long-lived collaborators shared by the workers.
type deps struct {
	store        *store.Store
	retriever    *retrieveknowledge.Retriever
	market       *fetchmarketdata.AlphaVantage
	orchestrator *generateadvice.Orchestrator
	sink         store.Sink
	notifier     projectgoal.GoalNotifier
}

func buildDeps(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, es *database.ElasticsearchClient,
	redis *database.RedisClient, log logger.Logger) (*deps, error) {

	gen, err := newGenerator(cfg.APIs.Generation)
	if err != nil {
		return nil, err
	}

	emb := cfg.APIs.Embedding
	embedder := retrieveknowledge.NewCachedEmbedder(
		ollama.NewClient(&ollama.Config{
			BaseURL: emb.BaseURL,
			Model:   emb.Model,
			Timeout: config.GetDuration(emb.Timeout),
		}),
		redis, emb.Model,
		time.Duration(cfg.Advisory.EmbeddingCacheTTL)*time.Second,
		log.With(map[string]interface{}{"component": "embedding-cache"}),
	)

	md := cfg.APIs.MarketData
	market := fetchmarketdata.NewAlphaVantage(
		apphttp.NewClient(config.GetDuration(md.Timeout), apphttp.WithRateLimit(md.RequestsPerMinute)),
		md.BaseURL, md.APIKey, true,
	)

	st := store.New(pg)
	d := &deps{
		store:        st,
		retriever:    retrieveknowledge.NewRetriever(es, embedder, retrieveknowledge.ConfigFrom(cfg)),
		market:       market,
		orchestrator: generateadvice.NewOrchestrator(gen, generateadvice.ConfigFrom(cfg), log.With(map[string]interface{}{"component": "orchestrator"})),
		sink: store.MultiSink{
			store.ChatHistorySink(st),
			store.StreamSink(store.NewEventPublisher(redis, cfg.Advisory.EventsStream)),
		},
	}

	if sns := cfg.Integrations.AWS.SNS; sns.Enabled {
		notifier, err := aws.NewSNSNotifier(ctx, cfg.Integrations.AWS.Region, sns.GoalAlertsTopic)
		if err != nil {
			return nil, err
		}
		d.notifier = notifier
	}
	return d, nil
}

func newGenerator(gen config.GenerationConfig) (generateadvice.Generator, error) {
	switch gen.Provider {
	case "ollama":
		return ollama.NewClient(&ollama.Config{
			BaseURL:     gen.BaseURL,
			Model:       gen.Model,
			Temperature: gen.Temperature,
			MaxTokens:   gen.MaxTokens,
			Timeout:     config.GetDuration(gen.Timeout),
		}), nil
	case "openai":
		return generateadvice.NewOpenAIGenerator(gen.APIKey, gen.BaseURL, gen.Model, gen.Temperature, gen.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", gen.Provider)
	}
}

// timedHandler is what every worker handler looks like to the registrar.
type timedHandler struct {
	handler camunda.JobHandler
	timeout time.Duration
}

func registerWorkers(client zbc.Client, cfg *config.Config, d *deps, obs *observability.Observability,
	zapLog *zap.Logger, log logger.Logger) []*camunda.CamundaWorker {

	extractCfg := extractsymbols.LoadConfig()
	if len(cfg.Advisory.SymbolAllowlist) > 0 {
		extractCfg.Allowlist = cfg.Advisory.SymbolAllowlist
	}
	extractCfg.MaxSymbols = cfg.Advisory.MaxQuoteSymbols

	retrieveCfg := retrieveknowledge.ConfigFrom(cfg)
	marketCfg := fetchmarketdata.ConfigFrom(cfg)
	generateCfg := generateadvice.ConfigFrom(cfg)
	adviseCfg := adviseuser.ConfigFrom(cfg)
	goalCfg := projectgoal.ConfigFrom(cfg)

	guardrailCfg := guardrailcheck.LoadConfig()
	fallbackCfg := smartfallback.LoadConfig()
	contextCfg := assemblecontext.LoadConfig()
	responseCfg := assembleresponse.LoadConfig()
	portfolioCfg := summarizeportfolio.LoadConfig()
	sipCfg := requiredsip.LoadConfig()

	handlers := map[string]timedHandler{
		guardrailcheck.TaskType:    {guardrailcheck.NewHandler(guardrailCfg, log), guardrailCfg.Timeout},
		extractsymbols.TaskType:    {extractsymbols.NewHandler(extractCfg, log), extractCfg.Timeout},
		retrieveknowledge.TaskType: {retrieveknowledge.NewHandler(retrieveCfg, d.retriever, log), retrieveCfg.Timeout},
		fetchmarketdata.TaskType:   {fetchmarketdata.NewHandler(marketCfg, d.market, log), marketCfg.Timeout},
		assemblecontext.TaskType:   {assemblecontext.NewHandler(contextCfg, log), contextCfg.Timeout},
		generateadvice.TaskType:    {generateadvice.NewHandler(generateCfg, d.orchestrator, log), generateCfg.Timeout},
		smartfallback.TaskType:     {smartfallback.NewHandler(fallbackCfg, log), fallbackCfg.Timeout},
		assembleresponse.TaskType:  {assembleresponse.NewHandler(responseCfg, log), responseCfg.Timeout},
		adviseuser.TaskType: {adviseuser.NewHandler(adviseCfg, adviseuser.Deps{
			Searcher:     d.retriever,
			Market:       d.market,
			Orchestrator: d.orchestrator,
			Profiles:     d.store,
			Sink:         d.sink,
			Obs:          obs,
		}, log), adviseCfg.Timeout},
		projectgoal.TaskType:        {projectgoal.NewHandler(goalCfg, d.store, d.notifier, log), goalCfg.Timeout},
		summarizeportfolio.TaskType: {summarizeportfolio.NewHandler(portfolioCfg, d.store, d.store, log), portfolioCfg.Timeout},
		requiredsip.TaskType:        {requiredsip.NewHandler(sipCfg, log), sipCfg.Timeout},
	}

	reg := registry.Default()
	validate := func(taskType, variables string) error {
		return validation.ValidateJobVariables(reg, taskType, variables)
	}
	errHandler := apperrors.NewErrorHandler(log.With(map[string]interface{}{"component": "validation"}))

	var workers []*camunda.CamundaWorker
	for taskType, th := range handlers {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := camunda.Instrument(taskType, camunda.WithValidation(taskType, th.handler, validate, errHandler), obs, zapLog)
		workers = append(workers, camunda.NewWorker(client, taskType, handler, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       jobTimeout(config.GetDuration(wcfg.Timeout), th.timeout),
		}, zapLog))
	}
	return workers
}

// jobTimeout keeps the broker lease longer than the handler's own deadline so
// a slow job is not handed to a second worker while the first still runs it.
func jobTimeout(configured, handler time.Duration) time.Duration {
	if floor := handler + 5*time.Second; configured < floor {
		return floor
	}
	return configured
}
