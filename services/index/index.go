package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/meghashyamc/searchresource/db/searchdb"
	"github.com/meghashyamc/searchresource/logger"
	"github.com/meghashyamc/searchresource/validation"
	"gopkg.in/yaml.v3"
)

// Indexer represents the search database operations needed to load objects
type Indexer interface {
	BuildIndex(documents []searchdb.Document) error
	DeleteDocuments(documentIDs []string) error
}

type ObjectStore interface {
	Set(bucket string, key string, value string) error
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
}

// Record is one object to load. A missing ID is generated.
type Record struct {
	Model  string         `yaml:"model" json:"model" validate:"required,valid_name"`
	ID     string         `yaml:"id" json:"id"`
	Fields map[string]any `yaml:"fields" json:"fields"`
}

type Service struct {
	logger      logger.Logger
	indexer     Indexer
	objectStore ObjectStore
	validator   *validation.Validator
}

func New(logger logger.Logger, indexer Indexer, objectStore ObjectStore, validator *validation.Validator) *Service {
	return &Service{
		logger:      logger,
		indexer:     indexer,
		objectStore: objectStore,
		validator:   validator,
	}
}

// LoadFile loads the list of records in a YAML or JSON file.
func (s *Service) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("could not read records file", "path", path, "err", err.Error())
		return 0, fmt.Errorf("could not read records file: %w", err)
	}

	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		s.logger.Error("could not parse records file", "path", path, "err", err.Error())
		return 0, fmt.Errorf("could not parse records file %s: %w", path, err)
	}

	return s.Load(records)
}

// Load stores every record and then indexes it, in batches. It returns the
// number of records loaded before the first failure.
func (s *Service) Load(records []Record) (int, error) {
	for i := range records {
		if err := s.validator.Validate(records[i]); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if records[i].ID == "" {
			records[i].ID = uuid.New().String()
		}
	}

	loaded := 0
	for start := 0; start < len(records); start += searchdb.IndexingBatchSize {
		batch := records[start:min(start+searchdb.IndexingBatchSize, len(records))]
		if err := s.loadBatch(batch); err != nil {
			return loaded, err
		}
		loaded += len(batch)
		s.logger.Info("loaded records", "count", fmt.Sprintf("%d/%d", loaded, len(records)))
	}

	return loaded, nil
}

func (s *Service) loadBatch(records []Record) error {
	documents := make([]searchdb.Document, 0, len(records))

	for _, record := range records {
		fields := record.Fields
		if fields == nil {
			fields = map[string]any{}
		}

		object := make(map[string]any, len(fields)+1)
		for key, value := range fields {
			object[key] = value
		}
		object["id"] = record.ID

		data, err := json.Marshal(object)
		if err != nil {
			s.logger.Error("failed to marshal object", "model", record.Model, "id", record.ID, "err", err.Error())
			return fmt.Errorf("failed to marshal %s %s: %w", record.Model, record.ID, err)
		}

		// Stored before indexing so that a failed index write never leaves a
		// match without an object behind it
		if err := s.objectStore.Set(record.Model, record.ID, string(data)); err != nil {
			return fmt.Errorf("failed to store %s %s: %w", record.Model, record.ID, err)
		}

		documents = append(documents, searchdb.Document{Model: record.Model, ObjectID: record.ID, Fields: fields})
	}

	if err := s.indexer.BuildIndex(documents); err != nil {
		s.logger.Error("failed to index batch", "err", err.Error())
		return fmt.Errorf("failed to index batch: %w", err)
	}

	return nil
}

// Remove deletes objects from the index first and the object store second.
func (s *Service) Remove(model string, ids []string) error {
	documentIDs := make([]string, len(ids))
	for i, id := range ids {
		documentIDs[i] = searchdb.DocumentID(model, id)
	}

	if err := s.indexer.DeleteDocuments(documentIDs); err != nil {
		s.logger.Error("failed to delete documents from search index", "err", err.Error())
		return fmt.Errorf("failed to delete documents from search index: %w", err)
	}

	for _, id := range ids {
		if err := s.objectStore.Delete(model, id); err != nil {
			s.logger.Error("failed to delete object", "model", model, "id", id, "err", err.Error())
			return fmt.Errorf("failed to delete %s %s: %w", model, id, err)
		}
	}

	return nil
}

// RemoveAll deletes every stored object of the model and returns how many
// were removed.
func (s *Service) RemoveAll(model string) (int, error) {
	ids, err := s.objectStore.GetAllKeys(model)
	if err != nil {
		s.logger.Error("failed to list objects", "model", model, "err", err.Error())
		return 0, fmt.Errorf("failed to list %s objects: %w", model, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.Remove(model, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
