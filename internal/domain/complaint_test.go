package domain_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/internal/domain"
)

func TestRawRecord_NullAndMissing(t *testing.T) {
	t.Parallel()

	var records []domain.RawRecord
	require.NoError(t, json.Unmarshal([]byte(`[{"raw_text":null},{},{"raw_text":"Fan broken"}]`), &records))
	require.Len(t, records, 3)

	assert.Empty(t, records[0].Text())
	assert.Empty(t, records[1].Text())
	assert.Equal(t, "Fan broken", records[2].Text())
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, ok := domain.ParseCategory(" mess ")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryMess, c)

	_, ok = domain.ParseCategory("library")
	assert.False(t, ok)
}

func TestParseSentiment(t *testing.T) {
	t.Parallel()

	tests := map[string]domain.Sentiment{
		"NEGATIVE": domain.SentimentNegative,
		"positive": domain.SentimentPositive,
		"Neutral":  domain.SentimentNeutral,
	}
	for label, want := range tests {
		got, ok := domain.ParseSentiment(label)
		require.True(t, ok, label)
		assert.Equal(t, want, got)
	}

	_, ok := domain.ParseSentiment("LABEL_1")
	assert.False(t, ok)
}

func TestPersistenceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := fmt.Errorf("store batch: %w", &domain.PersistenceError{Op: "insert_grievance", Err: cause})

	assert.True(t, domain.IsPersistence(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, domain.IsPersistence(domain.ErrNoInput))
	assert.ErrorIs(t, domain.MalformedError("missing %s", "raw_text"), domain.ErrMalformedIngestion)
}
