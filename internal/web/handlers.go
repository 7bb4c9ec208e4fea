package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harrison/pscan/internal/history"
	"github.com/harrison/pscan/internal/index"
	"github.com/harrison/pscan/internal/preview"
)

// handleParams returns the parameter names of the current snapshot.
func (s *Server) handleParams(c *gin.Context) {
	snap := s.holder.Current()
	c.JSON(http.StatusOK, gin.H{
		"params":  snap.Index.Params(),
		"records": snap.Index.Len(),
	})
}

// handleOptions returns cross-filtered options for the UI: for every
// parameter, the values valid with all *other* selected parameters
// fixed. Excluding the parameter itself lets the user revise an earlier
// choice without backing out of it first.
func (s *Server) handleOptions(c *gin.Context) {
	state, ok := s.selectionParam(c, "state")
	if !ok {
		return
	}
	snap := s.holder.Current()

	result := make(map[string][]string, len(snap.Index.Params()))
	for _, param := range snap.Index.Params() {
		excl := make(index.Selection, len(state))
		for k, v := range state {
			if k != param {
				excl[k] = v
			}
		}
		opts, err := snap.Index.Options(excl)
		if err != nil {
			s.metrics.QueriesTotal.WithLabelValues("options", "error").Inc()
			s.renderIndexError(c, err)
			return
		}
		result[param] = opts[param]
	}

	s.metrics.QueriesTotal.WithLabelValues("options", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"options": result})
}

// handleFile resolves a complete selection and returns the preview.
func (s *Server) handleFile(c *gin.Context) {
	sel, ok := s.selectionParam(c, "selection")
	if !ok {
		return
	}
	snap := s.holder.Current()

	path, err := snap.Index.Resolve(sel)
	if err != nil {
		s.metrics.QueriesTotal.WithLabelValues("resolve", resolveOutcome(err)).Inc()
		s.renderIndexError(c, err)
		return
	}
	s.metrics.QueriesTotal.WithLabelValues("resolve", "ok").Inc()

	if s.hist != nil {
		if err := s.hist.Record(c.Request.Context(), snap.ID.String(), sel, path); err != nil {
			s.log.Warnf("record history: %v", err)
		}
	}

	p, err := preview.Render(path)
	if err != nil {
		s.log.Warnf("preview %s: %v", path, err)
		c.JSON(http.StatusOK, gin.H{"path": path})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "preview": p})
}

// handleRefresh rescans and publishes a new snapshot.
func (s *Server) handleRefresh(c *gin.Context) {
	start := time.Now()
	snap, err := s.holder.Refresh(c.Request.Context())
	if err != nil {
		s.log.Errorf("refresh: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.metrics.ScansTotal.Inc()
	s.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	s.metrics.RecordsCurrent.Set(float64(snap.Index.Len()))
	s.log.Infof("rescan complete: %d records (%d skipped)", snap.Index.Len(), snap.Report.Skipped)

	c.JSON(http.StatusOK, gin.H{
		"snapshot_id": snap.ID.String(),
		"records":     snap.Index.Len(),
		"report":      snap.Report,
	})
}

// handleHistory returns recent resolutions.
func (s *Server) handleHistory(c *gin.Context) {
	if s.hist == nil {
		c.JSON(http.StatusOK, gin.H{"resolutions": []any{}})
		return
	}
	recent, err := s.hist.Recent(c.Request.Context(), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recent == nil {
		recent = []history.Resolution{}
	}
	c.JSON(http.StatusOK, gin.H{"resolutions": recent})
}

// selectionParam decodes a JSON selection from the named query parameter.
func (s *Server) selectionParam(c *gin.Context, name string) (index.Selection, bool) {
	raw := c.DefaultQuery(name, "{}")
	var sel index.Selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " JSON"})
		return nil, false
	}
	return sel, true
}

// renderIndexError maps the index error taxonomy onto HTTP statuses with
// the structured fields the UI needs.
func (s *Server) renderIndexError(c *gin.Context, err error) {
	var (
		unknown    *index.UnknownParameterError
		incomplete *index.IncompleteSelectionError
		noMatch    *index.NoMatchError
		ambiguous  *index.AmbiguousMatchError
	)
	switch {
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "param": unknown.Name})
	case errors.As(err, &incomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "missing": incomplete.Missing})
	case errors.As(err, &noMatch):
		c.JSON(http.StatusNotFound, gin.H{"error": "no file matches the current selection"})
	case errors.As(err, &ambiguous):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "paths": ambiguous.Paths})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// resolveOutcome labels a resolve failure for the query counter.
func resolveOutcome(err error) string {
	var (
		noMatch   *index.NoMatchError
		ambiguous *index.AmbiguousMatchError
	)
	switch {
	case errors.As(err, &noMatch):
		return "no_match"
	case errors.As(err, &ambiguous):
		return "ambiguous"
	default:
		return "error"
	}
}
