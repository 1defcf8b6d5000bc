package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/analysis"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/metrics"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/repository"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/stream"
)

// Analyzer is the part of monitor.Manager the handlers use.
type Analyzer interface {
	Latest() *analysis.Result
	RunOnce(ctx context.Context) (*analysis.Result, error)
	Trigger()
}

type Handler struct {
	repo        repository.Store
	analyzer    Analyzer
	levels      models.MinimumLevels
	broadcaster *stream.Broadcaster
}

func NewHandler(repo repository.Store, analyzer Analyzer, levels models.MinimumLevels, broadcaster *stream.Broadcaster) *Handler {
	return &Handler{
		repo:        repo,
		analyzer:    analyzer,
		levels:      levels,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	g := r.Group("/api")
	g.GET("/hospitals", h.getHospitals)
	g.GET("/hospitals/:id/priority", h.getPriority)
	g.GET("/hospitals/:id/shortages", h.getHospitalShortages)
	g.GET("/hospitals/:id/transfers", h.getHospitalTransfers)
	g.GET("/hospitals/:id/suppliers", h.getHospitalSuppliers)
	g.PUT("/hospitals/:id/equipment/:type", h.putEquipment)
	g.PUT("/hospitals/:id/supplies/:type", h.putSupply)
	g.GET("/shortages", h.getShortages)
	g.GET("/transfers", h.getTransfers)
	g.GET("/summary", h.getSummary)
	g.POST("/analyze", h.analyze)
	g.GET("/runs", h.getRuns)
	g.GET("/stream", h.streamAlerts)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getHospitals(c *gin.Context) {
	hospitals, err := h.repo.ListHospitals(c.Request.Context())
	if err != nil {
		slog.Error("error listing hospitals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch hospitals",
		})
		return
	}

	fc := toGeoJSON(hospitals, h.analyzer.Latest())
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getPriority(c *gin.Context) {
	res, id, ok := h.hospitalResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hospitalId":    id,
		"priorityLevel": res.PriorityLevel(id),
	})
}

func (h *Handler) getHospitalShortages(c *gin.Context) {
	res, id, ok := h.hospitalResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.ShortagesFor(id))
}

func (h *Handler) getHospitalTransfers(c *gin.Context) {
	res, id, ok := h.hospitalResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.TransfersInvolving(id))
}

func (h *Handler) getHospitalSuppliers(c *gin.Context) {
	res, id, ok := h.hospitalResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.SupplierOptionsFor(id))
}

func (h *Handler) putEquipment(c *gin.Context) {
	resourceType := c.Param("type")
	if _, ok := h.levels.Equipment[resourceType]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown equipment type: " + resourceType})
		return
	}

	var status models.EquipmentStatus
	if err := c.ShouldBindJSON(&status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	err := h.repo.SetEquipmentStatus(c.Request.Context(), c.Param("id"), resourceType, status)
	if !h.writeUpdateError(c, err) {
		return
	}

	h.analyzer.Trigger()
	c.JSON(http.StatusAccepted, status)
}

func (h *Handler) putSupply(c *gin.Context) {
	resourceType := c.Param("type")
	if _, ok := h.levels.Supplies[resourceType]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown supply type: " + resourceType})
		return
	}

	var status models.SupplyStatus
	if err := c.ShouldBindJSON(&status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	err := h.repo.SetSupplyStatus(c.Request.Context(), c.Param("id"), resourceType, status)
	if !h.writeUpdateError(c, err) {
		return
	}

	h.analyzer.Trigger()
	c.JSON(http.StatusAccepted, status)
}

// writeUpdateError reports whether err was nil; otherwise it writes the response.
func (h *Handler) writeUpdateError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "hospital not found"})
	case errors.Is(err, repository.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("error updating resource status", "hospital_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update resource status"})
	}
	return false
}

func (h *Handler) getShortages(c *gin.Context) {
	res, ok := h.latest(c)
	if !ok {
		return
	}

	severity, category, ok := shortageQuery(c)
	if !ok {
		return
	}

	shortages := []models.CriticalShortage{}
	for _, s := range res.CriticalShortages {
		if severity != "" && s.Severity != severity {
			continue
		}
		if category != "" && s.Category != category {
			continue
		}
		shortages = append(shortages, s)
	}
	c.JSON(http.StatusOK, shortages)
}

func (h *Handler) getTransfers(c *gin.Context) {
	res, ok := h.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.TransferRecommendations)
}

func (h *Handler) getSummary(c *gin.Context) {
	res, ok := h.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runId":       res.RunID,
		"generatedAt": res.GeneratedAt,
		"summary":     res.Summary(),
	})
}

func (h *Handler) analyze(c *gin.Context) {
	res, err := h.analyzer.RunOnce(c.Request.Context())
	if err != nil {
		var cfgErr *analysis.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		slog.Error("on-demand analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) getRuns(c *gin.Context) {
	filter := repository.Filter{
		Limit: 20,
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}

	runs, err := h.repo.ListRuns(c.Request.Context(), filter)
	if err != nil {
		slog.Error("error listing runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}
	if runs == nil {
		runs = []repository.RunRecord{}
	}
	c.JSON(http.StatusOK, runs)
}

// streamAlerts pushes shortage alerts as server-sent events until the client
// disconnects or the broadcaster closes. The hospital, category and severity
// query parameters narrow the alerts sent.
func (h *Handler) streamAlerts(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "streaming disabled"})
		return
	}

	severity, category, ok := shortageQuery(c)
	if !ok {
		return
	}
	filter := stream.Filter{
		HospitalID: c.Query("hospital"),
		Category:   category,
		Severity:   severity,
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	err := h.broadcaster.Stream(c.Request.Context(), filter, func(alert models.ShortageAlert) error {
		c.SSEvent("shortage", alert)
		c.Writer.Flush()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("alert stream ended", "error", err)
	}
}

// shortageQuery parses the severity and category filters; on a bad value it
// writes a 400 and returns false.
func shortageQuery(c *gin.Context) (models.Severity, models.Category, bool) {
	severity := models.Severity(c.Query("severity"))
	if severity != "" && severity != models.SeverityWarning && severity != models.SeverityCritical {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid severity: " + string(severity)})
		return "", "", false
	}
	category := models.Category(c.Query("category"))
	if category != "" && category != models.CategoryEquipment && category != models.CategorySupplies {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category: " + string(category)})
		return "", "", false
	}
	return severity, category, true
}

func (h *Handler) latest(c *gin.Context) (*analysis.Result, bool) {
	res := h.analyzer.Latest()
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis available yet"})
		return nil, false
	}
	return res, true
}

func (h *Handler) hospitalResult(c *gin.Context) (*analysis.Result, string, bool) {
	id := c.Param("id")
	if _, err := h.repo.GetHospital(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "hospital not found"})
		} else {
			slog.Error("error getting hospital", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch hospital"})
		}
		return nil, "", false
	}

	res, ok := h.latest(c)
	if !ok {
		return nil, "", false
	}
	return res, id, true
}
