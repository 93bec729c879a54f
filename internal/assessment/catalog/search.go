package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/common/metrics"
)

const (
	SourceElasticsearch = "elasticsearch"
	SourceEmbedded      = "embedded"

	defaultSearchSize = 50
)

// PathwayResult tells the caller where the pathways came from.
type PathwayResult struct {
	Pathways []CareerPathway `json:"career_pathways"`
	Source   string          `json:"source"`
	Took     int64           `json:"took_ms"`
}

// Searcher looks pathways up in Elasticsearch. A nil client means the index
// is not deployed and every call is served from the embedded catalog.
type Searcher struct {
	client  *elasticsearch.Client
	index   string
	timeout time.Duration
	logger  logger.Logger
}

func NewSearcher(client *elasticsearch.Client, index string, timeout time.Duration, log logger.Logger) *Searcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Searcher{
		client:  client,
		index:   index,
		timeout: timeout,
		logger:  logger.Component(log, "catalog"),
	}
}

// CareerPathways never fails: a search error is logged and the embedded
// catalog is served instead.
func (s *Searcher) CareerPathways(ctx context.Context, stream string) *PathwayResult {
	if s.client == nil || s.index == "" {
		metrics.CatalogSearches.WithLabelValues(SourceEmbedded).Inc()
		return &PathwayResult{Pathways: EmbeddedPathways(stream), Source: SourceEmbedded}
	}

	start := time.Now()
	pathways, err := s.search(ctx, stream)
	if err != nil {
		stdErr := apperrors.NewSearchFailedError(s.index, err)
		s.logger.Warn("career pathway search failed, serving embedded catalog", map[string]interface{}{
			"index":     s.index,
			"stream":    stream,
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
		metrics.CatalogSearches.WithLabelValues(SourceEmbedded).Inc()
		return &PathwayResult{Pathways: EmbeddedPathways(stream), Source: SourceEmbedded}
	}

	metrics.CatalogSearches.WithLabelValues(SourceElasticsearch).Inc()
	return &PathwayResult{
		Pathways: pathways,
		Source:   SourceElasticsearch,
		Took:     time.Since(start).Milliseconds(),
	}
}

func (s *Searcher) search(ctx context.Context, stream string) ([]CareerPathway, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := buildPathwayQuery(s.index, stream)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]CareerPathway, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p := hit.Source
		if p.ID == "" {
			p.ID = hit.ID
		}
		out = append(out, p)
	}
	return out, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string        `json:"_id"`
			Source CareerPathway `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildPathwayQuery(index, stream string) (*esapi.SearchRequest, error) {
	var query map[string]interface{}

	stream = strings.ToLower(strings.TrimSpace(stream))
	if stream == "" {
		query = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"stream": stream}},
				},
			},
		}
	}

	body, err := json.Marshal(map[string]interface{}{"query": query})
	if err != nil {
		return nil, err
	}

	size := defaultSearchSize
	return &esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}, nil
}
