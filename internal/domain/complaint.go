// Package domain holds the grievance types shared by the analyzer, storage
// and API layers.
package domain

import "strings"

// Category is the department a complaint is routed to.
type Category string

const (
	CategoryHostel         Category = "Hostel"
	CategoryMess           Category = "Mess"
	CategoryAcademics      Category = "Academics"
	CategoryAdministration Category = "Administration"
)

// Categories lists every category in routing priority order.
func Categories() []Category {
	return []Category{CategoryHostel, CategoryMess, CategoryAcademics, CategoryAdministration}
}

// ParseCategory matches name case-insensitively against the known categories.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories() {
		if strings.EqualFold(string(c), strings.TrimSpace(name)) {
			return c, true
		}
	}
	return "", false
}

// Sentiment is the tone of a complaint.
type Sentiment string

const (
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentPositive Sentiment = "Positive"
)

// ParseSentiment maps a collaborator label such as "NEGATIVE" or "positive"
// onto a Sentiment.
func ParseSentiment(label string) (Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "negative", "neg":
		return SentimentNegative, true
	case "neutral", "neu":
		return SentimentNeutral, true
	case "positive", "pos":
		return SentimentPositive, true
	default:
		return "", false
	}
}

// Urgency is the coarse priority of a complaint.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// RawRecord is one submitted complaint. RawText is nil when the field was
// missing or null.
type RawRecord struct {
	RawText *string `json:"raw_text"`
}

// NewRawRecord wraps text in a RawRecord.
func NewRawRecord(text string) RawRecord {
	return RawRecord{RawText: &text}
}

// Text returns the raw text, or "" when absent.
func (r RawRecord) Text() string {
	if r.RawText == nil {
		return ""
	}
	return *r.RawText
}

// Complaint is a normalized, categorized and toned record.
type Complaint struct {
	RawText   string    `json:"raw_text"`
	CleanText string    `json:"clean_text"`
	Category  Category  `json:"category"`
	Sentiment Sentiment `json:"sentiment"`
	Urgency   Urgency   `json:"urgency"`
}

// Dashboard is the aggregate view of one batch. Labels with no occurrences
// are omitted from the count maps.
type Dashboard struct {
	TotalComplaints     int               `json:"total_complaints"`
	CategoryCounts      map[Category]int  `json:"complaint_volume_by_category"`
	SentimentCounts     map[Sentiment]int `json:"sentiment_overview"`
	UrgencyCounts       map[Urgency]int   `json:"urgency_distribution"`
	WeeklySummary       string            `json:"weekly_summary"`
	TopRecurringIssues  []string          `json:"top_recurring_issues"`
	ProcessedComplaints []Complaint       `json:"processed_complaints"`
}
