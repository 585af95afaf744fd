package searchdb

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/searchresource/logger"
)

const IndexingBatchSize = 100

const (
	indexFieldModel  = "model"
	indexFieldFields = "fields"
	indexFieldID     = "object_id"
)

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

func New(logger logger.Logger, storagePath string, indexPath string) (*BleveDB, error) {
	mapping := createIndexMapping()
	fullIndexPath := filepath.Join(storagePath, indexPath)
	index, err := bleve.New(fullIndexPath, mapping)
	if err != nil {
		index, err = bleve.Open(fullIndexPath)
		if err != nil {
			logger.Error("could not open index", "path", fullIndexPath, "err", err.Error())
			return nil, err
		}
	}
	return &BleveDB{indexPath: fullIndexPath, logger: logger, index: index}, nil
}

func (b *BleveDB) BuildIndex(documents []Document) error {

	batch := b.index.NewBatch()

	for i, doc := range documents {

		err := batch.Index(doc.ID(), doc)
		if err != nil {
			b.logger.Error("could not index document", "id", doc.ID(), "err", err.Error())
			return err
		}

		// Execute batch when it reaches the batch size
		if (i+1)%IndexingBatchSize == 0 {
			err = b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index document", "err", err.Error())
			return err
		}
	}

	return nil
}

func createIndexMapping() mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// Model and id are exact-match only and must not leak into free-text matches
	modelFieldMapping := bleve.NewTextFieldMapping()
	modelFieldMapping.Analyzer = keyword.Name
	modelFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldModel, modelFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	idFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldID, idFieldMapping)

	// Object fields are mapped dynamically with the standard analyzer
	fieldsMapping := bleve.NewDocumentMapping()
	docMapping.AddSubDocumentMapping(indexFieldFields, fieldsMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// Search matches queryString against every field of the model's objects.
// The query string syntax supports quoted phrases and +/- term prefixes. Text
// that is not valid query string syntax is matched as plain words.
func (b *BleveDB) Search(ctx context.Context, model string, queryString string) *Sequence {
	return newSequence(ctx, b.index, b.logger, bleve.NewConjunctionQuery(modelQuery(model), b.textQuery(queryString)))
}

func (b *BleveDB) textQuery(queryString string) query.Query {
	if queryString = strings.TrimSpace(queryString); queryString == "" {
		return bleve.NewMatchAllQuery()
	}

	stringQuery := bleve.NewQueryStringQuery(queryString)
	if err := stringQuery.Validate(); err != nil {
		b.logger.Debug("query is not valid query string syntax, matching it as text", "query", queryString, "err", err.Error())
		return bleve.NewMatchQuery(queryString)
	}
	return stringQuery
}

// Autocomplete matches objects of the model whose field has a term starting
// with each whitespace separated token of queryString.
func (b *BleveDB) Autocomplete(ctx context.Context, model string, field string, queryString string) *Sequence {
	conjunctQuery := bleve.NewConjunctionQuery(modelQuery(model))

	for _, token := range strings.Fields(strings.ToLower(queryString)) {
		prefixQuery := bleve.NewPrefixQuery(token)
		prefixQuery.SetField(indexFieldFields + "." + field)
		conjunctQuery.AddQuery(prefixQuery)
	}

	return newSequence(ctx, b.index, b.logger, conjunctQuery)
}

func modelQuery(model string) query.Query {
	termQuery := bleve.NewTermQuery(model)
	termQuery.SetField(indexFieldModel)
	return termQuery
}

func (b *BleveDB) DeleteDocuments(documentIDs []string) error {
	batch := b.index.NewBatch()

	for i, docID := range documentIDs {
		batch.Delete(docID)

		// Execute batch when it reaches the batch size
		if (i+1)%IndexingBatchSize == 0 {
			err := b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return fmt.Errorf("could not close search index %s: %w", b.indexPath, err)
		}
	}
	return nil
}
