package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pulse-orchestrator/internal/adapter/genai"
	"pulse-orchestrator/internal/adapter/newsdb"
	"pulse-orchestrator/internal/domain"
	"pulse-orchestrator/internal/infra/config"
	"pulse-orchestrator/internal/usecase"
	"pulse-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Adapters
	ArticleRepo *newsdb.ArticleRepository
	ModelClient domain.ModelClient

	// Caches
	SnapshotCache *domain.NewsSnapshotCache
	AnalysisCache *domain.AnalysisResultCache

	// Usecases
	Prompts         *usecase.PromptCatalog
	Refresher       *usecase.SnapshotRefresher
	ChatUsecase     usecase.ChatUsecase
	AnalysisUsecase usecase.AnalysisUsecase
	TraceUsecase    usecase.TraceUsecase

	// Worker
	AutoWorker *worker.AutoAnalysisWorker
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	articleRepo := newsdb.NewArticleRepository(pool)
	modelClient := genai.NewClient(
		cfg.GenAIURL,
		genai.ModeConfig{Model: cfg.AnalysisModel, Think: cfg.AnalysisThink},
		genai.ModeConfig{Model: cfg.ChatModel, Think: cfg.ChatThink},
		time.Duration(cfg.GenAITimeoutSeconds)*time.Second,
		cfg.GenAIRequestsPerMin,
		log,
	)

	snapshotCache := domain.NewNewsSnapshotCache(nil)
	analysisCache := domain.NewAnalysisResultCache()
	prompts := usecase.NewPromptCatalog(cfg.PromptOverridesFile, log)
	refresher := usecase.NewSnapshotRefresher(
		articleRepo,
		domain.NewContextCompactor(),
		snapshotCache,
		time.Duration(cfg.SnapshotMaxAgeMin)*time.Minute,
		log,
	)

	return &ApplicationComponents{
		ArticleRepo:     articleRepo,
		ModelClient:     modelClient,
		SnapshotCache:   snapshotCache,
		AnalysisCache:   analysisCache,
		Prompts:         prompts,
		Refresher:       refresher,
		ChatUsecase:     usecase.NewChatUsecase(refresher, modelClient, prompts, log),
		AnalysisUsecase: usecase.NewAnalysisUsecase(refresher, modelClient, prompts, analysisCache, log),
		TraceUsecase:    usecase.NewTraceUsecase(modelClient, prompts, cfg.TraceMaxAttempts, log),
		AutoWorker:      worker.NewAutoAnalysisWorker(refresher, modelClient, prompts, log),
	}
}
