package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-engine/internal/common/logger"
)

func TestEmbeddedPathways(t *testing.T) {
	tests := []struct {
		stream string
		want   []string
	}{
		{"", []string{"Software Engineer", "Doctor", "Data Scientist", "Civil Engineer", "Teacher/Professor"}},
		{"engineering", []string{"Software Engineer", "Civil Engineer"}},
		{" Medical ", []string{"Doctor"}},
		{"vocational", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.stream, func(t *testing.T) {
			got := EmbeddedPathways(tt.stream)
			titles := make([]string, len(got))
			for i, p := range got {
				titles[i] = p.Title
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestColleges(t *testing.T) {
	assert.Len(t, Colleges("delhi", ""), 2)
	assert.Len(t, Colleges("", "New Delhi"), 2)

	fallback := Colleges("Kerala", "Kochi")
	require.Len(t, fallback, 2)
	assert.Equal(t, "Delhi University", fallback[0].Name)

	assert.Len(t, Colleges("", ""), 2)
}

func newESServer(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestSearcher_UsesElasticsearch(t *testing.T) {
	var body map[string]interface{}
	client := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/career_pathways/_search"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		_, _ = w.Write([]byte(`{
			"took": 2,
			"hits": {
				"total": {"value": 1},
				"hits": [
					{"_id": "es-7", "_source": {"title": "Robotics Engineer", "stream": "engineering",
						"salary_range": {"min": 500000, "max": 2200000, "currency": "INR"}}}
				]
			}
		}`))
	})

	s := NewSearcher(client, "career_pathways", time.Second, logger.NewTestLogger(t))
	got := s.CareerPathways(context.Background(), "Engineering")

	assert.Equal(t, SourceElasticsearch, got.Source)
	require.Len(t, got.Pathways, 1)
	assert.Equal(t, "es-7", got.Pathways[0].ID)
	assert.Equal(t, "Robotics Engineer", got.Pathways[0].Title)
	assert.Equal(t, 2200000, got.Pathways[0].SalaryRange.Max)

	query := body["query"].(map[string]interface{})
	filter := query["bool"].(map[string]interface{})["filter"].([]interface{})
	term := filter[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "engineering", term["stream"])
}

func TestSearcher_FallsBackOnSearchError(t *testing.T) {
	client := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"type": "index_not_found_exception"}}`))
	})

	s := NewSearcher(client, "career_pathways", time.Second, logger.NewTestLogger(t))
	got := s.CareerPathways(context.Background(), "medical")

	assert.Equal(t, SourceEmbedded, got.Source)
	require.Len(t, got.Pathways, 1)
	assert.Equal(t, "Doctor", got.Pathways[0].Title)
}

func TestSearcher_WithoutClient(t *testing.T) {
	s := NewSearcher(nil, "career_pathways", 0, nil)
	got := s.CareerPathways(context.Background(), "")
	assert.Equal(t, SourceEmbedded, got.Source)
	assert.Len(t, got.Pathways, 5)
}
