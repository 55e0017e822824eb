package domain

import "time"

// Grievance is a stored complaint submission.
type Grievance struct {
	ID          int64          `json:"id"`
	RawText     string         `json:"raw_text"`
	SubmittedAt time.Time      `json:"submitted_at"`
	UserInfo    map[string]any `json:"user_info,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
}

// AnalysisResult is the stored analysis of one grievance.
type AnalysisResult struct {
	ID          int64              `json:"id"`
	GrievanceID int64              `json:"grievance_id"`
	Category    Category           `json:"category"`
	Sentiment   Sentiment          `json:"sentiment"`
	Urgency     Urgency            `json:"urgency"`
	CleanText   string             `json:"clean_text"`
	Confidence  map[string]float64 `json:"confidence,omitempty"`
	ProcessedAt time.Time          `json:"processed_at"`
}

// GrievanceWithAnalysis joins a grievance with its latest analysis.
type GrievanceWithAnalysis struct {
	ID          int64     `json:"id"`
	RawText     string    `json:"raw_text"`
	SubmittedAt time.Time `json:"submitted_at"`
	CleanText   string    `json:"clean_text"`
	Category    Category  `json:"category"`
	Sentiment   Sentiment `json:"sentiment"`
	Urgency     Urgency   `json:"urgency"`
}

// Complaint projects the joined row onto the dashboard complaint shape.
func (g GrievanceWithAnalysis) Complaint() Complaint {
	return Complaint{
		RawText:   g.RawText,
		CleanText: g.CleanText,
		Category:  g.Category,
		Sentiment: g.Sentiment,
		Urgency:   g.Urgency,
	}
}

// BatchSummary is a stored dashboard for one analysed batch.
type BatchSummary struct {
	ID           int64     `json:"id"`
	BatchName    string    `json:"batch_name"`
	Dashboard    Dashboard `json:"dashboard"`
	GrievanceIDs []int64   `json:"grievance_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stats are aggregate counts over stored analyses.
type Stats struct {
	TotalGrievances int               `json:"total_grievances"`
	ByCategory      map[Category]int  `json:"by_category"`
	BySentiment     map[Sentiment]int `json:"by_sentiment"`
	ByUrgency       map[Urgency]int   `json:"by_urgency"`
}

// Snapshot is a point-in-time system analytics record.
type Snapshot struct {
	ID              int64             `json:"id"`
	AnalyticsDate   time.Time         `json:"analytics_date"`
	TotalGrievances int               `json:"total_grievances"`
	CategoryCounts  map[Category]int  `json:"category_counts"`
	SentimentCounts map[Sentiment]int `json:"sentiment_counts"`
	UrgencyCounts   map[Urgency]int   `json:"urgency_counts"`
	TrendingIssues  []string          `json:"trending_issues"`
	WeeklyGrowth    float64           `json:"weekly_growth"`
}
