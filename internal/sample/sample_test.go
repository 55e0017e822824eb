package sample_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/internal/analyzer"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/sample"
)

func TestDemoDashboard(t *testing.T) {
	t.Parallel()

	dashboard, err := analyzer.NewPipeline(analyzer.Options{}).Process(context.Background(), sample.Records())
	require.NoError(t, err)

	assert.Equal(t, 10, dashboard.TotalComplaints)
	assert.Equal(t, map[domain.Category]int{
		domain.CategoryHostel:         5,
		domain.CategoryMess:           2,
		domain.CategoryAcademics:      2,
		domain.CategoryAdministration: 1,
	}, dashboard.CategoryCounts)
	assert.Equal(t, map[domain.Urgency]int{
		domain.UrgencyHigh:   2,
		domain.UrgencyMedium: 1,
		domain.UrgencyLow:    7,
	}, dashboard.UrgencyCounts)
	assert.Contains(t, dashboard.WeeklySummary, "primary concerns in hostel category")
	assert.Len(t, dashboard.TopRecurringIssues, 3)
}

func TestTextsIsACopy(t *testing.T) {
	t.Parallel()

	texts := sample.Texts()
	texts[0] = "changed"
	assert.NotEqual(t, "changed", sample.Texts()[0])
}
