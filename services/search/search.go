package search

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/meghashyamc/searchresource/config"
	"github.com/meghashyamc/searchresource/db/kvdb"
	"github.com/meghashyamc/searchresource/db/searchdb"
	"github.com/meghashyamc/searchresource/logger"
	"github.com/meghashyamc/searchresource/pagination"
)

var ErrAutocompleteNotConfigured = errors.New("autocomplete is not configured for this resource")

// Hit is a matched object loaded from the object store.
type Hit struct {
	ID     string          `json:"id"`
	Model  string          `json:"model"`
	Score  float64         `json:"score"`
	Object json.RawMessage `json:"object"`
}

// Index is the part of the search database the service queries.
type Index interface {
	Search(ctx context.Context, model string, queryString string) *searchdb.Sequence
	Autocomplete(ctx context.Context, model string, field string, queryString string) *searchdb.Sequence
}

type ObjectStore interface {
	Get(bucket string, key string) (string, error)
}

type Service struct {
	logger  logger.Logger
	index   Index
	objects ObjectStore
}

func New(logger logger.Logger, index Index, objects ObjectStore) *Service {
	return &Service{
		logger:  logger,
		index:   index,
		objects: objects,
	}
}

// Search returns the lazily evaluated full-text matches among the resource's objects.
func (s *Service) Search(ctx context.Context, resource config.Resource, queryString string) pagination.Sequence[Hit] {
	return s.load(s.index.Search(ctx, resource.Model, queryString))
}

// Autocomplete returns the lazily evaluated prefix matches on the resource's
// autocomplete field.
func (s *Service) Autocomplete(ctx context.Context, resource config.Resource, queryString string) (pagination.Sequence[Hit], error) {
	if resource.AutocompleteField == "" {
		return nil, errors.Wrapf(ErrAutocompleteNotConfigured, "resource %s", resource.Name)
	}
	return s.load(s.index.Autocomplete(ctx, resource.Model, resource.AutocompleteField, queryString)), nil
}

func (s *Service) load(matches indexSequence) *loadedSequence {
	return &loadedSequence{matches: matches, objects: s.objects, logger: s.logger}
}

type indexSequence interface {
	Count() (int, error)
	Slice(start, end int) ([]searchdb.Hit, error)
}

// loadedSequence resolves every index match of a slice to its stored object.
// Matches whose object is gone are returned as nil.
type loadedSequence struct {
	matches indexSequence
	objects ObjectStore
	logger  logger.Logger
}

func (l *loadedSequence) Count() (int, error) {
	return l.matches.Count()
}

func (l *loadedSequence) Slice(start, end int) ([]*Hit, error) {
	matches, err := l.matches.Slice(start, end)
	if err != nil {
		return nil, err
	}

	hits := make([]*Hit, len(matches))
	for i, match := range matches {
		object, err := l.objects.Get(match.Model, match.ObjectID)
		var notFoundErr *kvdb.NotFoundError
		if errors.As(err, &notFoundErr) {
			l.logger.Debug("skipping stale index entry", "model", match.Model, "id", match.ObjectID)
			continue
		}
		if err != nil {
			l.logger.Error("could not load object", "model", match.Model, "id", match.ObjectID, "err", err.Error())
			return nil, errors.Wrapf(err, "could not load %s %s", match.Model, match.ObjectID)
		}

		hits[i] = &Hit{
			ID:     match.ObjectID,
			Model:  match.Model,
			Score:  match.Score,
			Object: json.RawMessage(object),
		}
	}

	return hits, nil
}
