// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/taxoburst/internal/aggregate"
	"github.com/pdiddy/taxoburst/internal/table"
	"github.com/pdiddy/taxoburst/internal/taxonomy"
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 50
)

// loadTSV aggregates an uploaded classification table.
func (s *Server) loadTSV(c *gin.Context) {
	start := time.Now()

	if limit := s.cfg.MaxUploadBytes; limit > 0 {
		if c.Request.ContentLength > limit {
			s.metrics.runs.WithLabelValues(statusMalformed).Inc()
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		s.metrics.runs.WithLabelValues(statusMalformed).Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\""})
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.metrics.runs.WithLabelValues(statusError).Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reading upload"})
		return
	}
	defer f.Close()

	tbl, err := table.Parse(f)
	if err != nil {
		s.metrics.runs.WithLabelValues(statusMalformed).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := aggregate.Run(c.Request.Context(), s.resolver, tbl.Records, aggregate.Options{
		ScoresEnabled:  tbl.ScoresEnabled,
		HeadersEnabled: tbl.HeadersEnabled,
		Logger:         s.logger,
	})
	if err == nil && s.verify {
		err = aggregate.Verify(res, len(tbl.Records))
	}
	if err != nil {
		if errors.Is(err, taxonomy.ErrTaxonNotFound) {
			s.metrics.runs.WithLabelValues(statusUnknownTaxon).Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		s.metrics.runs.WithLabelValues(statusError).Inc()
		s.logger.Error("aggregation failed", zap.String("file", fh.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}

	s.metrics.runs.WithLabelValues(statusOK).Inc()
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.records.Observe(float64(len(tbl.Records)))
	s.logger.Debug("aggregated upload",
		zap.String("file", fh.Filename),
		zap.Int("records", len(tbl.Records)),
		zap.Int("nodes", len(res.Nodes)),
		zap.Int("lineages", len(res.Lineages)),
	)
	c.JSON(http.StatusOK, res)
}

// fetchIDRequest is the body of POST /fetchID.
type fetchIDRequest struct {
	TaxName string `json:"taxName"`
}

// fetchID resolves a scientific name to a taxon ID.
func (s *Server) fetchID(c *gin.Context) {
	var req fetchIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TaxName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taxName is required"})
		return
	}

	id, err := s.resolver.LookupID(c.Request.Context(), strings.TrimSpace(req.TaxName))
	switch {
	case errors.Is(err, taxonomy.ErrNameNotFound), errors.Is(err, taxonomy.ErrAmbiguousName):
		s.metrics.lookups.WithLabelValues(lookupMiss).Inc()
		c.JSON(http.StatusNotFound, gin.H{"taxID": nil, "error": "no match"})
	case err != nil:
		s.metrics.lookups.WithLabelValues(lookupError).Inc()
		s.logger.Error("name lookup failed", zap.String("name", req.TaxName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
	default:
		s.metrics.lookups.WithLabelValues(lookupHit).Inc()
		c.JSON(http.StatusOK, gin.H{"taxID": id})
	}
}

// suggest proposes names for a partial query.
func (s *Server) suggest(c *gin.Context) {
	sg, ok := s.resolver.(taxonomy.Suggester)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "suggestions unavailable"})
		return
	}

	limit := defaultSuggestLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSuggestLimit)
	}

	names, err := sg.Suggest(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		s.logger.Error("suggest failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "suggest failed"})
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}
