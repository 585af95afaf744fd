package searchdb

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/searchresource/logger"
)

// Sequence is the lazily evaluated list of matches for one query. Nothing is
// fetched from the index until Count or Slice is called, and Slice only
// fetches the requested window.
//
// A Sequence belongs to a single request and is not safe for concurrent use.
type Sequence struct {
	ctx    context.Context
	index  bleve.Index
	logger logger.Logger
	query  query.Query

	total   int
	counted bool
}

func newSequence(ctx context.Context, index bleve.Index, logger logger.Logger, query query.Query) *Sequence {
	return &Sequence{ctx: ctx, index: index, logger: logger, query: query}
}

// Count returns the total number of matches. The first call runs the query
// without fetching any hits; later calls reuse the result.
func (s *Sequence) Count() (int, error) {
	if s.counted {
		return s.total, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(s.query, 0, 0, false)
	searchResult, err := s.index.SearchInContext(s.ctx, searchRequest)
	if err != nil {
		s.logger.Error("count failed", "err", err.Error())
		return 0, fmt.Errorf("count failed: %w", err)
	}

	s.total = int(searchResult.Total)
	s.counted = true
	return s.total, nil
}

// Slice returns the matches in [start, end), best match first. Ties are
// broken by document id so that consecutive pages do not overlap.
func (s *Sequence) Slice(start, end int) ([]Hit, error) {
	if start < 0 || end <= start {
		return []Hit{}, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(s.query, end-start, start, false)
	searchRequest.SortBy([]string{"-_score", "_id"})

	searchResult, err := s.index.SearchInContext(s.ctx, searchRequest)
	if err != nil {
		s.logger.Error("search failed", "start", start, "end", end, "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if !s.counted {
		s.total = int(searchResult.Total)
		s.counted = true
	}

	hits := make([]Hit, len(searchResult.Hits))
	for i, match := range searchResult.Hits {
		model, objectID := parseDocumentID(match.ID)
		hits[i] = Hit{
			Model:    model,
			ObjectID: objectID,
			Score:    match.Score,
		}
	}

	return hits, nil
}
