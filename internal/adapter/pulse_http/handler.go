package pulse_http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pulse-orchestrator/internal/domain"
	"pulse-orchestrator/internal/usecase"
	"pulse-orchestrator/internal/worker"
)

// Handler exposes the analysis, chat, trace, webhook, and article routes.
type Handler struct {
	chatUsecase     usecase.ChatUsecase
	analysisUsecase usecase.AnalysisUsecase
	traceUsecase    usecase.TraceUsecase
	refresher       *usecase.SnapshotRefresher
	snapshotCache   *domain.NewsSnapshotCache
	autoWorker      *worker.AutoAnalysisWorker
	articles        domain.ArticleProvider
	prompts         *usecase.PromptCatalog
}

// NewHandler wires the boundary.
func NewHandler(
	chatUsecase usecase.ChatUsecase,
	analysisUsecase usecase.AnalysisUsecase,
	traceUsecase usecase.TraceUsecase,
	refresher *usecase.SnapshotRefresher,
	snapshotCache *domain.NewsSnapshotCache,
	autoWorker *worker.AutoAnalysisWorker,
	articles domain.ArticleProvider,
	prompts *usecase.PromptCatalog,
) *Handler {
	return &Handler{
		chatUsecase:     chatUsecase,
		analysisUsecase: analysisUsecase,
		traceUsecase:    traceUsecase,
		refresher:       refresher,
		snapshotCache:   snapshotCache,
		autoWorker:      autoWorker,
		articles:        articles,
		prompts:         prompts,
	}
}

// Register attaches every route under the /api prefix.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/analysis/run", h.RunAnalysis)
	api.GET("/analysis/all", h.AllAnalysis)
	api.POST("/analysis/refresh", h.RefreshAnalysis)
	api.POST("/chat", h.Chat)
	api.POST("/chat/refresh", h.RefreshChatCache)
	api.POST("/trace", h.Trace)
	api.POST("/webhook/crawl-complete", h.CrawlComplete)
	api.GET("/auto-analysis", h.AutoAnalysis)
	api.GET("/articles", h.Articles)
	api.GET("/sections", h.Sections)
	api.GET("/prompts", h.GetPrompts)
	api.PUT("/prompts", h.PutPrompts)
	api.PUT("/prompts/:kind/:locale", h.PutPrompt)
}

type runAnalysisRequest struct {
	TaskID string `json:"taskId"`
	Locale string `json:"locale"`
}

// RunAnalysis serves one task from the cached bundle, or the whole bundle
// when no task is named. Failure-transparent: errors propagate as 500.
func (h *Handler) RunAnalysis(c echo.Context) error {
	var req runAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	locale := domain.ParseLocale(req.Locale, domain.LocaleZH)
	ctx := c.Request().Context()

	if req.TaskID == "" {
		bundle, err := h.analysisUsecase.All(ctx, locale)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
		}
		return c.JSON(http.StatusOK, bundle)
	}

	result, err := h.analysisUsecase.RunTask(ctx, locale, domain.TaskID(req.TaskID))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
	}
	return c.JSON(http.StatusOK, result)
}

// AllAnalysis returns the locale's full bundle.
func (h *Handler) AllAnalysis(c echo.Context) error {
	locale := domain.ParseLocale(c.QueryParam("locale"), domain.LocaleZH)
	bundle, err := h.analysisUsecase.All(c.Request().Context(), locale)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
	}
	return c.JSON(http.StatusOK, bundle)
}

type refreshAnalysisRequest struct {
	Locale string `json:"locale"`
}

// RefreshAnalysis invalidates one locale's bundle; other locales keep
// serving cached answers.
func (h *Handler) RefreshAnalysis(c echo.Context) error {
	var req refreshAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	locale := domain.ParseLocale(req.Locale, domain.LocaleZH)
	h.analysisUsecase.Refresh(locale)
	return c.JSON(http.StatusOK, map[string]string{"message": "Cache cleared"})
}

type chatRequest struct {
	Question string `json:"question" validate:"required"`
	Hours    int    `json:"hours"`
	Locale   string `json:"locale"`
}

type chatResponse struct {
	Answer    string        `json:"answer"`
	CacheInfo chatCacheInfo `json:"cacheInfo"`
}

type chatCacheInfo struct {
	ArticleCount int `json:"articleCount"`
	Hours        int `json:"hours"`
}

// Chat answers a question over the cached snapshot. Failure-transparent.
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Question is required"})
	}

	output, err := h.chatUsecase.Execute(c.Request().Context(), usecase.ChatInput{
		Question: req.Question,
		Hours:    req.Hours,
		Locale:   domain.ParseLocale(req.Locale, domain.LocaleEN),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Chat failed"})
	}
	return c.JSON(http.StatusOK, chatResponse{
		Answer: output.Answer,
		CacheInfo: chatCacheInfo{
			ArticleCount: output.ArticleCount,
			Hours:        output.Hours,
		},
	})
}

type refreshChatRequest struct {
	Hours int `json:"hours"`
}

// RefreshChatCache forces a snapshot refresh for the requested window.
func (h *Handler) RefreshChatCache(c echo.Context) error {
	var req refreshChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	hours := req.Hours
	if hours <= 0 {
		hours = 24
	}
	entry, err := h.refresher.Refresh(c.Request().Context(), hours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Cache refreshed",
		"cache": map[string]interface{}{
			"articleCount": entry.ArticleCount,
			"sections":     entry.Sections,
			"updatedAt":    entry.CapturedAt,
			"hours":        entry.WindowHours,
		},
	})
}

type traceRequest struct {
	Title  string `json:"title" validate:"required"`
	Source string `json:"source"`
	Locale string `json:"locale"`
}

// Trace runs the resilient extraction pipeline. Failure-opaque: always 200
// with either the parsed result or the default object; only missing input
// is rejected.
func (h *Handler) Trace(c echo.Context) error {
	var req traceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}

	result := h.traceUsecase.Execute(c.Request().Context(), usecase.TraceInput{
		Title:  req.Title,
		Source: req.Source,
		Locale: domain.ParseLocale(req.Locale, domain.LocaleEN),
	})
	return c.JSON(http.StatusOK, result)
}

// CrawlComplete enqueues a background analysis run and acknowledges
// immediately; the worker loop does the rest.
func (h *Handler) CrawlComplete(c echo.Context) error {
	eventID := h.autoWorker.Trigger()
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "received",
		"message": "Analysis started",
		"eventId": eventID.String(),
	})
}

// AutoAnalysis serves the latest background run, or null placeholders when
// no run has completed yet.
func (h *Handler) AutoAnalysis(c echo.Context) error {
	result, ok := h.autoWorker.Latest()
	if !ok {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"content":     nil,
			"generatedAt": nil,
		})
	}
	return c.JSON(http.StatusOK, result)
}

// Articles is a passthrough read of the raw scrape batch.
func (h *Handler) Articles(c echo.Context) error {
	hours, err := strconv.Atoi(c.QueryParam("hours"))
	if err != nil || hours <= 0 {
		hours = 1
	}
	articles, err := h.articles.FetchRecent(c.Request().Context(), hours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch articles"})
	}
	return c.JSON(http.StatusOK, articles)
}

// Sections lists the distinct section labels of the last day.
func (h *Handler) Sections(c echo.Context) error {
	sections, err := h.articles.Sections(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch sections"})
	}
	return c.JSON(http.StatusOK, sections)
}

// GetPrompts returns the effective prompt templates for the editor.
func (h *Handler) GetPrompts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.prompts.All())
}

// PutPrompts replaces the whole override set.
func (h *Handler) PutPrompts(c echo.Context) error {
	var overrides map[usecase.PromptKind]map[domain.Locale]string
	if err := c.Bind(&overrides); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.prompts.ReplaceAll(overrides); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type putPromptRequest struct {
	Content string `json:"content" validate:"required"`
}

// PutPrompt updates a single template.
func (h *Handler) PutPrompt(c echo.Context) error {
	var req putPromptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}
	kind := usecase.PromptKind(c.Param("kind"))
	locale := domain.ParseLocale(c.Param("locale"), domain.DefaultLocale)
	if err := h.prompts.SetOverride(kind, locale, req.Content); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
