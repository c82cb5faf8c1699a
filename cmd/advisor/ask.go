// cmd/advisor/ask.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"advisory-workers/internal/common/config"
	"advisory-workers/internal/common/database"
	apperrors "advisory-workers/internal/common/errors"
	apphttp "advisory-workers/internal/common/http"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/common/ollama"
	"advisory-workers/internal/models"
	"advisory-workers/internal/store"
	adviseuser "advisory-workers/internal/workers/advisory/advise-user"
	fetchmarketdata "advisory-workers/internal/workers/advisory/fetch-market-data"
	generateadvice "advisory-workers/internal/workers/advisory/generate-advice"
	retrieveknowledge "advisory-workers/internal/workers/advisory/retrieve-knowledge"
)

var (
	askUser    string
	askProfile string
	askOffline bool
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Answer a message through the advisory pipeline",
	Long: `ask runs guardrails, retrieval, market data, generation and response
assembly for one message and prints the answer.

With --offline no knowledge index, market data or database is contacted and
the answer comes from generation or the rule-based fallback alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askUser, "user", "", "user id whose profile and history are loaded from postgres")
	askCmd.Flags().StringVar(&askProfile, "profile", "", "JSON file with a user profile")
	askCmd.Flags().BoolVar(&askOffline, "offline", false, "skip retrieval, market data and the database")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	zapLog, log := newLogger()
	defer zapLog.Sync()

	var profile *models.UserProfile
	if askProfile != "" {
		if profile, err = readProfile(askProfile); err != nil {
			return err
		}
	}

	deps, cleanup, err := askDeps(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	adviseCfg := adviseuser.ConfigFrom(cfg)
	adviseCfg.PersistChat = false
	pipeline := adviseuser.NewPipeline(adviseCfg, deps, log)

	ctx, cancel := context.WithTimeout(cmd.Context(), adviseCfg.Timeout)
	defer cancel()
	res, err := pipeline.Run(ctx, adviseuser.Request{
		UserID:  askUser,
		Message: strings.Join(args, " "),
		Profile: profile,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	fmt.Fprintln(out, res.Response.Text)
	fmt.Fprintf(out, "\n[source=%s sentiment=%s symbols=%s retrieval=%t]\n",
		res.Response.Source, res.Response.Sentiment, strings.Join(res.Symbols, ","), res.RetrievalAvailable)
	return nil
}

func readProfile(path string) (*models.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p models.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperrors.NewInvalidInputError("profile", fmt.Sprintf("parse %s: %v", path, err))
	}
	return &p, nil
}

// askDeps connects what it can. Anything unreachable is replaced by a stand-in
// that fails every call, which the pipeline treats as a degraded dependency.
func askDeps(ctx context.Context, cfg *config.Config, log logger.Logger) (adviseuser.Deps, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	gen, err := generatorFor(cfg.APIs.Generation)
	if err != nil {
		return adviseuser.Deps{}, cleanup, err
	}
	deps := adviseuser.Deps{
		Searcher:     offlineSearcher{},
		Market:       offlineMarket{},
		Orchestrator: generateadvice.NewOrchestrator(gen, generateadvice.ConfigFrom(cfg), log),
	}
	if askOffline {
		return deps, cleanup, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	md := cfg.APIs.MarketData
	if md.APIKey != "" {
		deps.Market = fetchmarketdata.NewAlphaVantage(
			apphttp.NewClient(config.GetDuration(md.Timeout), apphttp.WithRateLimit(md.RequestsPerMinute)),
			md.BaseURL, md.APIKey, true,
		)
	}

	var redis *database.RedisClient
	if r, err := database.NewRedis(cfg.Database.Redis); err == nil && r.Ping(pingCtx) == nil {
		redis = r
		closers = append(closers, r.Close)
	} else {
		log.Warn("redis unavailable, embeddings are not cached", map[string]interface{}{"error": err})
	}

	if es, err := database.NewElasticsearch(cfg.Database.Elasticsearch); err == nil && es.Ping(pingCtx) == nil {
		emb := cfg.APIs.Embedding
		var embedder retrieveknowledge.Embedder = ollama.NewClient(&ollama.Config{
			BaseURL: emb.BaseURL,
			Model:   emb.Model,
			Timeout: config.GetDuration(emb.Timeout),
		})
		if redis != nil {
			embedder = retrieveknowledge.NewCachedEmbedder(embedder, redis, emb.Model,
				time.Duration(cfg.Advisory.EmbeddingCacheTTL)*time.Second, log)
		}
		deps.Searcher = retrieveknowledge.NewRetriever(es, embedder, retrieveknowledge.ConfigFrom(cfg))
	} else {
		log.Warn("elasticsearch unavailable, answering without knowledge", map[string]interface{}{"error": err})
	}

	if askUser != "" {
		if pg, err := database.NewPostgres(cfg.Database.Postgres); err == nil && pg.Ping(pingCtx) == nil {
			deps.Profiles = store.New(pg)
			closers = append(closers, pg.Close)
		} else {
			log.Warn("postgres unavailable, profile not loaded", map[string]interface{}{"error": err})
		}
	}
	return deps, cleanup, nil
}

func generatorFor(gen config.GenerationConfig) (generateadvice.Generator, error) {
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
	}
	return nil, fmt.Errorf("unknown generation provider %q", gen.Provider)
}

var errOffline = errors.New("offline")

type offlineSearcher struct{}

func (offlineSearcher) Search(context.Context, string, int) ([]models.RetrievedDocument, error) {
	return nil, apperrors.NewRetrievalUnavailableError(errOffline)
}

type offlineMarket struct{}

func (offlineMarket) Quote(context.Context, string) (*models.MarketQuote, error) {
	return nil, apperrors.NewMarketDataUnavailableError(errOffline)
}

func (offlineMarket) Sentiment(context.Context) (models.MarketSentiment, error) {
	return models.SentimentNeutral, apperrors.NewMarketDataUnavailableError(errOffline)
}
