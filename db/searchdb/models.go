package searchdb

import "strings"

// Document is one object as it is indexed. ObjectID is unique within Model.
type Document struct {
	Model    string         `json:"model"`
	ObjectID string         `json:"object_id"`
	Fields   map[string]any `json:"fields"`
}

// ID is the index-wide document id.
func (d Document) ID() string {
	return DocumentID(d.Model, d.ObjectID)
}

type Hit struct {
	Model    string
	ObjectID string
	Score    float64
}

func DocumentID(model string, objectID string) string {
	return model + documentIDSeparator + objectID
}

const documentIDSeparator = ":"

func parseDocumentID(id string) (string, string) {
	model, objectID, _ := strings.Cut(id, documentIDSeparator)
	return model, objectID
}
