package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coursecompass/advisor-go/internal/buildinfo"
	"github.com/coursecompass/advisor-go/internal/ctxutil"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/sentry"
)

// toolRequest is the body of a tool invocation. Params are passed
// through to the tool handler unparsed.
type toolRequest struct {
	Params json.RawMessage `json:"params"`
}

// toolInfo describes one registered tool in listing responses.
type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *Application) registerRoutes(router *gin.Engine) {
	router.GET("/", a.handleRoot)
	router.GET("/livez", a.handleLiveness)
	router.HEAD("/livez", a.handleLiveness)
	router.GET("/readyz", a.handleReadiness)
	router.HEAD("/readyz", a.handleReadiness)

	v1 := router.Group("/v1", rateLimitMiddleware(a.limiter))
	v1.GET("/tools", a.handleListTools)
	v1.POST("/tools/:name", a.handleToolCall)

	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
}

func (a *Application) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":    a.cfg.ServerName,
		"version":    buildinfo.Version,
		"commit":     buildinfo.Commit,
		"build_date": buildinfo.BuildDate,
	})
}

func (a *Application) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleReadiness reports ready once the initial reference-data load
// finished (or its grace period elapsed) and the catalog answers pings.
func (a *Application) handleReadiness(c *gin.Context) {
	status := a.ready.Status()
	if !status.Ready {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	if err := a.db.Conn().PingContext(c.Request.Context()); err != nil {
		status.Ready = false
		status.Reason = "catalog unavailable"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (a *Application) handleListTools(c *gin.Context) {
	registered := a.tools.List()
	infos := make([]toolInfo, 0, len(registered))
	for _, tool := range registered {
		infos = append(infos, toolInfo{Name: tool.Name, Description: tool.Description})
	}
	c.JSON(http.StatusOK, gin.H{"tools": infos})
}

// handleToolCall dispatches one tool invocation. Domain errors map to
// client status codes; anything else is a 500 reported to Sentry.
func (a *Application) handleToolCall(c *gin.Context) {
	name := c.Param("name")
	tool, ok := a.tools.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tool: " + name})
		return
	}

	if !a.ready.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service is still loading reference data"})
		return
	}

	var req toolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.metrics.RecordToolInvocation(name, "invalid", 0)
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a params object"})
		return
	}

	ctx := ctxutil.WithToolName(c.Request.Context(), name)
	start := time.Now()
	content, err := tool.Handler(ctx, req.Params)
	duration := time.Since(start).Seconds()

	if err != nil {
		status := statusForError(err)
		a.metrics.RecordToolInvocation(name, "error", duration)
		if status >= http.StatusInternalServerError {
			a.metrics.RecordHTTPError("internal", name)
			sentry.CaptureExceptionWithContext(ctx, err)
			a.log.WithModule(name).WithError(err).Error("tool invocation failed")
		}
		c.JSON(status, gin.H{"error": domerrors.GetUserMessage(err)})
		return
	}

	a.metrics.RecordToolInvocation(name, "ok", duration)
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domerrors.ErrInvalidInput),
		errors.Is(err, domerrors.ErrAmbiguousInput):
		return http.StatusBadRequest
	case errors.Is(err, domerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domerrors.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
