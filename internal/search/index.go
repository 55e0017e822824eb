// Package search indexes analysed grievances in Elasticsearch and queries them.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/domain"
)

// DefaultIndex is the grievance index name.
const DefaultIndex = "grievances"

// Document is the indexed form of an analysed grievance.
type Document struct {
	ID          int64     `json:"id"`
	RawText     string    `json:"raw_text"`
	CleanText   string    `json:"clean_text"`
	Category    string    `json:"category"`
	Sentiment   string    `json:"sentiment"`
	Urgency     string    `json:"urgency"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewDocument builds a Document from a stored grievance.
func NewDocument(g domain.GrievanceWithAnalysis) Document {
	return Document{
		ID:          g.ID,
		RawText:     g.RawText,
		CleanText:   g.CleanText,
		Category:    string(g.Category),
		Sentiment:   string(g.Sentiment),
		Urgency:     string(g.Urgency),
		SubmittedAt: g.SubmittedAt,
	}
}

func (d Document) grievance() domain.GrievanceWithAnalysis {
	return domain.GrievanceWithAnalysis{
		ID:          d.ID,
		RawText:     d.RawText,
		SubmittedAt: d.SubmittedAt,
		CleanText:   d.CleanText,
		Category:    domain.Category(d.Category),
		Sentiment:   domain.Sentiment(d.Sentiment),
		Urgency:     domain.Urgency(d.Urgency),
	}
}

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":           map[string]any{"type": "long"},
			"raw_text":     map[string]any{"type": "text"},
			"clean_text":   map[string]any{"type": "text"},
			"category":     map[string]any{"type": "keyword"},
			"sentiment":    map[string]any{"type": "keyword"},
			"urgency":      map[string]any{"type": "keyword"},
			"submitted_at": map[string]any{"type": "date"},
		},
	},
}

// Index reads and writes the grievance index.
type Index struct {
	client *es.Client
	name   string
	log    logger.Logger
}

// NewIndex creates an Index over name, or DefaultIndex when name is empty.
func NewIndex(client *es.Client, name string, log logger.Logger) *Index {
	if name == "" {
		name = DefaultIndex
	}
	return &Index{client: client, name: name, log: log}
}

// Name returns the index name.
func (i *Index) Name() string {
	return i.name
}

// EnsureIndex creates the index with its mapping if it does not exist.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.name}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", i.name, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking index %s: %s", i.name, res.Status())
	}

	body, err := json.Marshal(indexMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = i.client.Indices.Create(
		i.name,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", i.name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index %s: %s", i.name, res.String())
	}

	i.log.Info("Created search index", logger.String("index", i.name))
	return nil
}

// IndexGrievance writes doc under its grievance id.
func (i *Index) IndexGrievance(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := i.client.Index(
		i.name,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(strconv.FormatInt(doc.ID, 10)),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}
	return nil
}

// Search runs a full-text match over raw and clean text, newest first.
func (i *Index) Search(ctx context.Context, term string, limit int) ([]domain.GrievanceWithAnalysis, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  term,
				"fields": []string{"raw_text", "clean_text"},
			},
		},
		"size": limit,
		"sort": []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
			{"submitted_at": map[string]any{"order": "desc"}},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	out := make([]domain.GrievanceWithAnalysis, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		out = append(out, hit.Source.grievance())
	}
	return out, nil
}

// Ping reports whether the cluster answers.
func (i *Index) Ping(ctx context.Context) error {
	res, err := i.client.Ping(i.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping returned %s", res.Status())
	}
	return nil
}
