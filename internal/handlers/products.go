package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trendscout/research-service/internal/export"
	"github.com/trendscout/research-service/internal/scoring"
	"github.com/trendscout/research-service/internal/store"
)

// WinnersResponse lists recently analyzed winner-tier products.
type WinnersResponse struct {
	Count   int                     `json:"count"`
	Results []scoring.ScoredProduct `json:"results"`
}

// Winners returns recent analyses classified as winners
// GET /internal/products/winners?limit=50
func (h *ResearchHandler) Winners(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis store not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	results, err := h.store.Winners(c.Request.Context(), limit)
	if err != nil {
		slog.Error("winners query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "winners query failed"})
		return
	}

	c.JSON(http.StatusOK, WinnersResponse{Count: len(results), Results: results})
}

// StatsResponse aggregates stored analyses by status tier.
type StatsResponse struct {
	Counts store.StatusCounts `json:"counts"`
}

// Stats returns analysis counts by status tier
// GET /internal/products/stats
func (h *ResearchHandler) Stats(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis store not configured"})
		return
	}

	counts, err := h.store.Stats(c.Request.Context())
	if err != nil {
		slog.Error("stats query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{Counts: counts})
}

// ExportReport streams an XLSX research report of a scored batch
// POST /internal/products/export
func (h *ResearchHandler) ExportReport(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	results, err := h.orch.AnalyzeBatch(c.Request.Context(), req.Products, parseMode(req.Mode), nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, results); err != nil {
		slog.Error("report build failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report build failed"})
		return
	}

	filename := "research-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
