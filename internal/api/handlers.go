// Package api exposes the grievance analysis service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/ingest"
	"github.com/dj0804/GrievanceInsight/internal/service"
)

const (
	// MaxUploadBytes bounds CSV/XLSX uploads.
	MaxUploadBytes = 10 << 20

	defaultLimit = 10
	maxLimit     = 100
)

// Service is the analysis surface the handlers need.
type Service interface {
	AnalyzeBatch(ctx context.Context, records []domain.RawRecord, opts service.BatchOptions) (*service.BatchResult, error)
	AnalyzeSingle(ctx context.Context, rawText string) (domain.Complaint, error)
	SubmitGrievance(ctx context.Context, sub service.Submission) (*service.StoredAnalysis, error)
	Categories() []domain.Category
	Demo(ctx context.Context) (*domain.Dashboard, error)
	StoredDashboard(ctx context.Context) (*domain.Dashboard, error)
	Recent(ctx context.Context, limit int) ([]domain.GrievanceWithAnalysis, error)
	Search(ctx context.Context, term string, limit int) ([]domain.GrievanceWithAnalysis, error)
	ByCategory(ctx context.Context, category string, limit int) ([]domain.GrievanceWithAnalysis, error)
	LatestBatch(ctx context.Context) (*domain.BatchSummary, error)
	Snapshots(ctx context.Context, limit int) ([]domain.Snapshot, error)
}

// Handler handles HTTP requests for the grievance API.
type Handler struct {
	svc     Service
	log     logger.Logger
	version string
}

// NewHandler creates a new API handler.
func NewHandler(svc Service, log logger.Logger, version string) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{svc: svc, log: log, version: version}
}

// Root handles GET /
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Grievance Insight API",
		"status":  "running",
		"version": h.version,
	})
}

// AnalyzeBatch handles POST /api/v1/analyze/batch
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid batch request", logger.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if len(req.Complaints) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No complaints provided"})
		return
	}

	result, err := h.svc.AnalyzeBatch(c.Request.Context(), req.Complaints, service.BatchOptions{
		Persist:   req.Persist,
		BatchName: req.BatchName,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.respondBatchError(c, result, err)
		return
	}

	c.JSON(http.StatusOK, newBatchResponse(result))
}

// AnalyzeUpload handles POST /api/v1/analyze/csv
func (h *Handler) AnalyzeUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "upload exceeds " + strconv.FormatInt(tooLarge.Limit>>20, 10) + "MB limit",
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}
	if _, err = ingest.DetectFormat(header.Filename); err != nil {
		h.respondError(c, err, nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read upload"})
		return
	}
	defer file.Close()

	records, err := ingest.Parse(header.Filename, file)
	if err != nil {
		h.log.Warn("Rejected upload", logger.String("filename", header.Filename), logger.Error(err))
		h.respondError(c, err, nil)
		return
	}

	h.log.Info("Analysing upload",
		logger.String("filename", header.Filename),
		logger.Int("records", len(records)),
	)

	result, err := h.svc.AnalyzeBatch(c.Request.Context(), records, service.BatchOptions{})
	if err != nil {
		h.respondBatchError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, result.Dashboard)
}

// AnalyzeSingle handles POST /api/v1/analyze/single
func (h *Handler) AnalyzeSingle(c *gin.Context) {
	var req SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	complaint, err := h.svc.AnalyzeSingle(c.Request.Context(), req.RawText)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, newSingleResponse(req.RawText, complaint))
}

// AnalyzeAndStore handles POST /api/v1/analyze/single/db
func (h *Handler) AnalyzeAndStore(c *gin.Context) {
	var req SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	stored, err := h.svc.SubmitGrievance(c.Request.Context(), service.Submission{
		RawText:   req.RawText,
		UserInfo:  req.UserInfo,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		var analysis any
		if stored != nil && stored.Complaint.Category != "" {
			analysis = newSingleResponse(req.RawText, stored.Complaint)
		}
		h.respondError(c, err, analysis)
		return
	}

	h.log.Info("Grievance stored",
		logger.Int64("grievance_id", stored.GrievanceID),
		logger.Int64("analysis_id", stored.AnalysisID),
		logger.String("category", string(stored.Complaint.Category)),
	)
	c.JSON(http.StatusOK, StoredResponse{
		GrievanceID:    stored.GrievanceID,
		AnalysisID:     stored.AnalysisID,
		SingleResponse: newSingleResponse(req.RawText, stored.Complaint),
	})
}

// Categories handles GET /api/v1/categories
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.svc.Categories()})
}

// Demo handles GET /api/v1/demo
func (h *Handler) Demo(c *gin.Context) {
	dashboard, err := h.svc.Demo(c.Request.Context())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// StoredAnalytics handles GET /api/v1/analytics/db
func (h *Handler) StoredAnalytics(c *gin.Context) {
	dashboard, err := h.svc.StoredDashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Recent handles GET /api/v1/grievances/recent
func (h *Handler) Recent(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	grievances, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, newGrievanceList(grievances))
}

// Search handles GET /api/v1/grievances/search
func (h *Handler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter q is required"})
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	grievances, err := h.svc.Search(c.Request.Context(), term, limit)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	list := newGrievanceList(grievances)
	list.Query = term
	c.JSON(http.StatusOK, list)
}

// ByCategory handles GET /api/v1/grievances/category/:category
func (h *Handler) ByCategory(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	grievances, err := h.svc.ByCategory(c.Request.Context(), c.Param("category"), limit)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, newGrievanceList(grievances))
}

// LatestBatch handles GET /api/v1/batches/latest
func (h *Handler) LatestBatch(c *gin.Context) {
	batch, err := h.svc.LatestBatch(c.Request.Context())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// Snapshots handles GET /api/v1/analytics/snapshots
func (h *Handler) Snapshots(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	snapshots, err := h.svc.Snapshots(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots, "count": len(snapshots)})
}

func (h *Handler) respondBatchError(c *gin.Context, result *service.BatchResult, err error) {
	var analysis any
	if result != nil && result.Dashboard != nil {
		analysis = newBatchResponse(result)
	}
	h.respondError(c, err, analysis)
}

// respondError maps service errors to status codes. analysis is attached
// to persistence failures so callers keep the completed analysis.
func (h *Handler) respondError(c *gin.Context, err error, analysis any) {
	var pErr *domain.PersistenceError
	switch {
	case errors.Is(err, domain.ErrNoInput), errors.Is(err, domain.ErrMalformedIngestion):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.As(err, &pErr):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:    "analysis completed but could not be stored: " + pErr.Op,
			Analysis: analysis,
		})
	default:
		h.log.Error("Request failed", logger.String("path", c.FullPath()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "processing error: " + err.Error()})
	}
}

// parseLimit reads ?limit=, writing a 400 when it is outside 1..100.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 100"})
		return 0, false
	}
	return limit, true
}
