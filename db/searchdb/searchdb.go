package searchdb

import "context"

type DB interface {
	BuildIndex(documents []Document) error
	DeleteDocuments(documentIDs []string) error
	Search(ctx context.Context, model string, queryString string) *Sequence
	Autocomplete(ctx context.Context, model string, field string, queryString string) *Sequence
	GetDocCount() (uint64, error)
	Close() error
}
