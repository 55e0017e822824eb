package api

import (
	"time"

	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/service"
)

// BatchRequest is the body of POST /api/v1/analyze/batch.
type BatchRequest struct {
	Complaints []domain.RawRecord `json:"complaints"`
	Persist    bool               `json:"persist"`
	BatchName  string             `json:"batch_name"`
}

// SingleRequest is the body of the single-complaint endpoints.
type SingleRequest struct {
	RawText  string         `json:"raw_text" binding:"required"`
	UserInfo map[string]any `json:"user_info"`
}

// ErrorResponse is returned for every failed request. Analysis carries the
// completed analysis when only storage failed.
type ErrorResponse struct {
	Error    string `json:"error"`
	Analysis any    `json:"analysis,omitempty"`
}

// BatchResponse is the dashboard plus storage ids when the batch was stored.
type BatchResponse struct {
	*domain.Dashboard
	BatchID      int64   `json:"batch_id,omitempty"`
	BatchName    string  `json:"batch_name,omitempty"`
	GrievanceIDs []int64 `json:"grievance_ids,omitempty"`
}

func newBatchResponse(r *service.BatchResult) BatchResponse {
	return BatchResponse{
		Dashboard:    r.Dashboard,
		BatchID:      r.BatchID,
		BatchName:    r.BatchName,
		GrievanceIDs: r.GrievanceIDs,
	}
}

// SingleResponse is the analysis of one complaint.
type SingleResponse struct {
	Complaint string           `json:"complaint"`
	Category  domain.Category  `json:"category"`
	Sentiment domain.Sentiment `json:"sentiment"`
	Urgency   domain.Urgency   `json:"urgency"`
	CleanText string           `json:"clean_text"`
}

func newSingleResponse(raw string, c domain.Complaint) SingleResponse {
	return SingleResponse{
		Complaint: raw,
		Category:  c.Category,
		Sentiment: c.Sentiment,
		Urgency:   c.Urgency,
		CleanText: c.CleanText,
	}
}

// StoredResponse is a single analysis with its storage ids.
type StoredResponse struct {
	GrievanceID int64 `json:"grievance_id"`
	AnalysisID  int64 `json:"analysis_id"`
	SingleResponse
}

// GrievanceResponse is a stored grievance with its analysis.
type GrievanceResponse struct {
	ID          int64            `json:"id"`
	RawText     string           `json:"raw_text"`
	CleanText   string           `json:"clean_text"`
	Category    domain.Category  `json:"category"`
	Sentiment   domain.Sentiment `json:"sentiment"`
	Urgency     domain.Urgency   `json:"urgency"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
}

// GrievanceListResponse wraps a list of stored grievances.
type GrievanceListResponse struct {
	Grievances []GrievanceResponse `json:"grievances"`
	Count      int                 `json:"count"`
	Query      string              `json:"query,omitempty"`
}

func newGrievanceList(rows []domain.GrievanceWithAnalysis) GrievanceListResponse {
	out := make([]GrievanceResponse, len(rows))
	for i, g := range rows {
		out[i] = GrievanceResponse{
			ID:        g.ID,
			RawText:   g.RawText,
			CleanText: g.CleanText,
			Category:  g.Category,
			Sentiment: g.Sentiment,
			Urgency:   g.Urgency,
		}
		if !g.SubmittedAt.IsZero() {
			at := g.SubmittedAt
			out[i].SubmittedAt = &at
		}
	}
	return GrievanceListResponse{Grievances: out, Count: len(out)}
}
