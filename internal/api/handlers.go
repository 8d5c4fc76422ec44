// Package api exposes the lookup and projection operations over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gyeh/ccmcalc/internal/cms"
	"github.com/gyeh/ccmcalc/internal/funnel"
	"github.com/gyeh/ccmcalc/internal/model"
)

// Lookup is the subset of the CMS client the API depends on.
type Lookup interface {
	LookupOne(ctx context.Context, term string, st cms.SearchType, state string) (*model.PhysicianRecord, error)
	LookupBulkNames(ctx context.Context, names []string, state string) ([]model.PhysicianRecord, error)
	LookupBulkFile(ctx context.Context, content, state string) ([]model.PhysicianRecord, error)
}

// NewRouter builds the HTTP API. The router carries no per-request state of
// its own; projection requests are stateless and lookups delegate to the
// dataset client.
func NewRouter(client Lookup, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := &handlers{client: client, log: log}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/assumptions", h.assumptions)

	r.POST("/api/physician", h.lookupOne)
	r.POST("/api/physicians/bulk", h.lookupBulk)
	r.POST("/api/physicians/bulk_file", h.lookupBulkFile)
	r.POST("/api/projection", h.projection)

	return r
}

type handlers struct {
	client Lookup
	log    zerolog.Logger
}

type lookupRequest struct {
	SearchTerm string `json:"search_term" binding:"required"`
	SearchType string `json:"search_type"`
	State      string `json:"state"`
}

func (h *handlers) lookupOne(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := cms.SearchByName
	if req.SearchType == string(cms.SearchByNPI) {
		st = cms.SearchByNPI
	}

	rec, err := h.client.LookupOne(c.Request.Context(), req.SearchTerm, st, req.State)
	if errors.Is(err, cms.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No Medicare data found for " + req.SearchTerm + ". The physician may not bill traditional Medicare.",
		})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("term", req.SearchTerm).Msg("lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "dataset lookup failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type bulkRequest struct {
	Names []string `json:"names" binding:"required"`
	State string   `json:"state"`
}

func (h *handlers) lookupBulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.client.LookupBulkNames(c.Request.Context(), req.Names, req.State)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records":   records,
		"requested": len(req.Names),
		"found":     len(records),
	})
}

type bulkFileRequest struct {
	Content string `json:"content" binding:"required"`
	State   string `json:"state"`
}

func (h *handlers) lookupBulkFile(c *gin.Context) {
	var req bulkFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.client.LookupBulkFile(c.Request.Context(), req.Content, req.State)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"found":   len(records),
	})
}

type projectionRequest struct {
	Records     []model.PhysicianRecord `json:"records" binding:"required"`
	Assumptions *model.AssumptionSet    `json:"assumptions"`
	ProfitMode  bool                    `json:"profit_mode"`
}

// projection is pure computation: the caller supplies raw records and
// optional assumption overrides, and gets back projected rows plus totals.
func (h *handlers) projection(c *gin.Context) {
	var req projectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assumptions := model.DefaultAssumptions()
	if req.Assumptions != nil {
		assumptions = *req.Assumptions
	}

	projected := make([]model.ProjectedRecord, 0, len(req.Records))
	for _, rec := range req.Records {
		projected = append(projected, funnel.Project(rec, assumptions, req.ProfitMode))
	}

	c.JSON(http.StatusOK, gin.H{
		"records": projected,
		"totals":  funnel.Aggregate(projected),
	})
}

// assumptions serves the default values and display metadata used to render
// assumption forms.
func (h *handlers) assumptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"defaults": model.DefaultAssumptions(),
		"fields":   model.AssumptionFields(),
	})
}
