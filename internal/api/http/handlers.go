package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/GriffinCanCode/modhost/internal/advisory"
	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ThemeCookie persists the page theme.
	ThemeCookie = "cvrf-theme"

	themeLight = "light"
	themeDark  = "dark"

	defaultProductLimit = 20
	maxProductLimit     = 200
	themeCookieMaxAge   = 365 * 24 * 60 * 60
)

// Handlers contains all HTTP handlers
type Handlers struct {
	runner   *advisory.Runner
	products advisory.Products
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	title    string
}

// NewHandlers creates a new handler set
func NewHandlers(runner *advisory.Runner, products advisory.Products, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		runner:   runner,
		products: products,
		metrics:  metrics,
		logger:   logger,
		title:    "Fortinet CVRF Review",
	}
}

type presetOption struct {
	Name string `json:"name"`
	Min  string `json:"min"`
	Max  string `json:"max"`
}

func (h *Handlers) presetOptions() []presetOption {
	presets := h.runner.Presets()
	names := presets.Names()
	opts := make([]presetOption, 0, len(names))
	for _, name := range names {
		r, _ := presets.Lookup(name)
		opts = append(opts, presetOption{
			Name: name,
			Min:  advisory.FormatScore(r.Min),
			Max:  advisory.FormatScore(r.Max),
		})
	}
	return opts
}

// Page renders the search form.
func (h *Handlers) Page(c *gin.Context) {
	theme := themeFromCookie(c)
	themeClass := ""
	if theme != "" {
		themeClass = "theme-" + theme
	}
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Title":      h.title,
		"Theme":      theme,
		"ThemeClass": themeClass,
		"Presets":    h.presetOptions(),
		"Products":   h.products,
	})
}

// ToggleTheme flips the theme cookie. An explicit theme form value wins.
func (h *Handlers) ToggleTheme(c *gin.Context) {
	next := themeDark
	if themeFromCookie(c) == themeDark {
		next = themeLight
	}
	switch v := c.PostForm("theme"); v {
	case themeLight, themeDark:
		next = v
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ThemeCookie, next, themeCookieMaxAge, "/", "", false, false)

	switch c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) {
	case gin.MIMEHTML:
		c.Redirect(http.StatusSeeOther, "/")
	default:
		c.JSON(http.StatusOK, gin.H{"theme": next})
	}
}

func themeFromCookie(c *gin.Context) string {
	v, err := c.Cookie(ThemeCookie)
	if err != nil {
		return ""
	}
	switch v {
	case themeLight, themeDark:
		return v
	}
	return ""
}

// Products returns product names matching q.
func (h *Handlers) Products(c *gin.Context) {
	limit := defaultProductLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
		if limit == 0 || limit > maxProductLimit {
			limit = maxProductLimit
		}
	}

	matches := h.products.Search(c.Query("q"), limit)
	if matches == nil {
		matches = advisory.Products{}
	}
	c.JSON(http.StatusOK, gin.H{
		"products": matches,
		"total":    len(h.products),
	})
}

// Presets returns the severity presets in descending order.
func (h *Handlers) Presets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": h.presetOptions()})
}

// Run executes the module for a form or JSON query.
func (h *Handlers) Run(c *gin.Context) {
	var q advisory.Query
	if err := c.ShouldBind(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}
	if err := q.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}

	out, err := h.runner.Run(c.Request.Context(), q)
	if err != nil {
		status := StatusFor(err)
		h.logger.Warn("run failed",
			zap.String("product", q.Product),
			zap.String("version", q.Version),
			zap.Int("status", status),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"html": out, "exit": "ok"})
}

// Health reports liveness and execution totals.
func (h *Handlers) Health(c *gin.Context) {
	snap := h.metrics.Snapshot()
	errorRate := 0.0
	if snap.Executions > 0 {
		errorRate = float64(snap.Failures) / float64(snap.Executions)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"metrics":    snap,
		"error_rate": errorRate,
		"products":   len(h.products),
	})
}

// StatusFor maps a run error to an HTTP status: 502 when the artifact could
// not be loaded, 500 for every other failure.
func StatusFor(err error) int {
	if bridge.IsLoadError(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
