// Package report renders dashboards as console tables.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dj0804/GrievanceInsight/internal/domain"
)

const noIssues = "No recurring issues detected this week."

var (
	sentimentOrder = []string{
		string(domain.SentimentNegative),
		string(domain.SentimentNeutral),
		string(domain.SentimentPositive),
	}
	urgencyOrder = []string{
		string(domain.UrgencyHigh),
		string(domain.UrgencyMedium),
		string(domain.UrgencyLow),
	}
)

// Render writes the dashboard to w as a series of tables.
func Render(w io.Writer, d *domain.Dashboard) error {
	if d == nil {
		return errors.New("nothing to render")
	}

	if _, err := fmt.Fprintf(w, "Grievance Insights Dashboard\n\n"); err != nil {
		return err
	}

	overview := newTable(w, "Overview")
	overview.AppendRow(table.Row{"Total complaints", d.TotalComplaints})
	overview.Render()

	categories := make(map[string]int, len(d.CategoryCounts))
	categoryOrder := make([]string, 0, len(d.CategoryCounts))
	for _, c := range domain.Categories() {
		categoryOrder = append(categoryOrder, string(c))
	}
	for c, n := range d.CategoryCounts {
		categories[string(c)] = n
	}
	renderDistribution(w, "Complaint Volume by Category", "Category", categoryOrder, categories)

	sentiments := make(map[string]int, len(d.SentimentCounts))
	for s, n := range d.SentimentCounts {
		sentiments[string(s)] = n
	}
	renderDistribution(w, "Sentiment Distribution", "Sentiment", sentimentOrder, sentiments)

	urgencies := make(map[string]int, len(d.UrgencyCounts))
	for u, n := range d.UrgencyCounts {
		urgencies[string(u)] = n
	}
	renderDistribution(w, "Urgency Distribution", "Urgency", urgencyOrder, urgencies)

	issues := newTable(w, "Top Recurring Issues")
	issues.AppendHeader(table.Row{"#", "Issue"})
	if len(d.TopRecurringIssues) == 0 {
		issues.AppendRow(table.Row{"-", noIssues})
	}
	for i, issue := range d.TopRecurringIssues {
		issues.AppendRow(table.Row{i + 1, issue})
	}
	issues.Render()

	summary := newTable(w, "Weekly Summary")
	summary.SetColumnConfigs([]table.ColumnConfig{{Number: 1, WidthMax: 80}})
	summary.AppendRow(table.Row{d.WeeklySummary})
	summary.Render()

	return nil
}

// Percent returns count as a percentage of total with one decimal.
func Percent(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	t.Style().Title.Align = text.AlignLeft
	return t
}

// renderDistribution lists labels in order, then any unknown labels sorted,
// skipping zero counts.
func renderDistribution(w io.Writer, title, label string, order []string, counts map[string]int) {
	total := 0
	for _, n := range counts {
		total += n
	}

	known := make(map[string]struct{}, len(order))
	labels := make([]string, 0, len(counts))
	for _, l := range order {
		known[l] = struct{}{}
		if counts[l] > 0 {
			labels = append(labels, l)
		}
	}
	var extra []string
	for l := range counts {
		if _, ok := known[l]; !ok && counts[l] > 0 {
			extra = append(extra, l)
		}
	}
	sort.Strings(extra)
	labels = append(labels, extra...)

	t := newTable(w, title)
	t.AppendHeader(table.Row{label, "Count", "Share"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	for _, l := range labels {
		t.AppendRow(table.Row{l, counts[l], Percent(counts[l], total)})
	}
	t.AppendFooter(table.Row{"Total", total, ""})
	t.Render()
}
