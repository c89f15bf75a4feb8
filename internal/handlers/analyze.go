package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trendscout/research-service/internal/catalog"
	"github.com/trendscout/research-service/internal/scoring"
	"github.com/trendscout/research-service/internal/store"
)

// ResearchHandler handles product research HTTP endpoints
type ResearchHandler struct {
	store  *store.Store
	search *catalog.Client
	orch   *scoring.Orchestrator
}

// NewResearchHandler creates a research handler
func NewResearchHandler(st *store.Store, search *catalog.Client, orch *scoring.Orchestrator) *ResearchHandler {
	return &ResearchHandler{
		store:  st,
		search: search,
		orch:   orch,
	}
}

// AnalyzeRequest carries pre-normalized products for batch scoring.
type AnalyzeRequest struct {
	Products    []scoring.Product `json:"products" binding:"required,min=1,max=100"`
	Mode        string            `json:"mode"`
	SortByScore bool              `json:"sortByScore"`
}

// AnalyzeResponse is the scored batch.
type AnalyzeResponse struct {
	RunID   string                  `json:"runId"`
	Mode    string                  `json:"mode"`
	Results []scoring.ScoredProduct `json:"results"`
}

// Analyze scores a batch of products
// POST /internal/analyze
func (h *ResearchHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	mode := parseMode(req.Mode)
	runID := "run_" + uuid.NewString()
	slog.Info("analyze batch requested", "run_id", runID, "mode", mode, "products", len(req.Products))

	// Drop records the provider guarantees never reach the scorer
	products := make([]scoring.Product, 0, len(req.Products))
	for _, p := range req.Products {
		if p.ExternalID == "" || p.Price <= 0 {
			continue
		}
		products = append(products, p)
	}

	results, err := h.orch.AnalyzeBatch(c.Request.Context(), products, mode, &scoring.BatchOptions{
		SortByScore: req.SortByScore,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.store != nil {
		if err := h.store.SaveBatch(c.Request.Context(), results); err != nil {
			slog.Error("persist batch failed", "run_id", runID, "error", err)
		}
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		RunID:   runID,
		Mode:    string(mode),
		Results: results,
	})
}

// SearchResponse is the search-and-analyze result.
type SearchResponse struct {
	RunID     string                  `json:"runId"`
	Query     string                  `json:"query"`
	Mode      string                  `json:"mode"`
	FromCache int                     `json:"fromCache"`
	Scored    int                     `json:"scored"`
	Results   []scoring.ScoredProduct `json:"results"`
}

// SearchAndAnalyze searches the product provider and scores the results,
// serving cached analyses where they are still fresh
// GET /internal/products/search?q=...&pages=1&mode=quick_batch
func (h *ResearchHandler) SearchAndAnalyze(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}
	pages, _ := strconv.Atoi(c.DefaultQuery("pages", "1"))
	mode := parseMode(c.Query("mode"))

	ctx := c.Request.Context()
	runID := "run_" + uuid.NewString()

	products, err := h.search.SearchPages(ctx, query, pages)
	if err != nil {
		slog.Error("product search failed", "run_id", runID, "query", query, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "product search failed"})
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusOK, SearchResponse{RunID: runID, Query: query, Mode: string(mode)})
		return
	}

	// Serve fresh cached analyses, score only the rest
	cached := make([]scoring.ScoredProduct, 0, len(products))
	toScore := make([]scoring.Product, 0, len(products))
	for _, p := range products {
		if h.store != nil {
			if r, ok, err := h.store.Get(ctx, p.ExternalID); err == nil && ok {
				cached = append(cached, r)
				continue
			}
		}
		toScore = append(toScore, p)
	}

	scored, err := h.orch.AnalyzeBatch(ctx, toScore, mode, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.store != nil && len(scored) > 0 {
		if err := h.store.SaveBatch(ctx, scored); err != nil {
			slog.Error("persist batch failed", "run_id", runID, "error", err)
		}
	}

	results := append(cached, scored...)
	c.JSON(http.StatusOK, SearchResponse{
		RunID:     runID,
		Query:     query,
		Mode:      string(mode),
		FromCache: len(cached),
		Scored:    len(scored),
		Results:   results,
	})
}

// parseMode maps the API's mode parameter onto a batch mode, defaulting
// to the cheap quick-batch path.
func parseMode(s string) scoring.Mode {
	switch s {
	case "per_item", "full":
		return scoring.ModePerItem
	case "", "quick", "quick_batch":
		return scoring.ModeQuickBatch
	default:
		return scoring.Mode(s) // let the orchestrator reject unknown modes
	}
}
