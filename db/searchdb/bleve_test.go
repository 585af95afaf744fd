package searchdb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

var testDocuments = []Document{
	{Model: "note", ObjectID: "1", Fields: map[string]any{"title": "Grocery list", "body": "milk eggs bread"}},
	{Model: "note", ObjectID: "2", Fields: map[string]any{"title": "Gardening plans", "body": "plant tomatoes in spring"}},
	{Model: "note", ObjectID: "3", Fields: map[string]any{"title": "Meeting notes", "body": "discuss spring release"}},
	{Model: "person", ObjectID: "1", Fields: map[string]any{"name": "Grace Hopper", "bio": "spring compiler pioneer"}},
	{Model: "person", ObjectID: "2", Fields: map[string]any{"name": "Ada Lovelace", "bio": "analytical engine"}},
}

func newTestDB(t *testing.T, assert *require.Assertions) *BleveDB {
	testLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	db, err := New(testLogger, t.TempDir(), "index.bleve")
	assert.NoError(err, "could not create search database")
	t.Cleanup(func() {
		assert.NoError(db.Close(), "could not close search database")
	})
	return db
}

func objectIDs(hits []Hit) []string {
	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ObjectID
	}
	return ids
}

var searchTestCases = []struct {
	name        string
	model       string
	query       string
	expectedIDs []string
}{
	{name: "MatchBody", model: "note", query: "tomatoes", expectedIDs: []string{"2"}},
	{name: "MatchTitleCaseInsensitive", model: "note", query: "GROCERY", expectedIDs: []string{"1"}},
	{name: "RestrictedToModel", model: "person", query: "spring", expectedIDs: []string{"1"}},
	{name: "RequiredAndExcludedTerms", model: "note", query: "+spring -tomatoes", expectedIDs: []string{"3"}},
	{name: "Phrase", model: "note", query: `"spring release"`, expectedIDs: []string{"3"}},
	{name: "EmptyQueryMatchesModel", model: "person", query: "  ", expectedIDs: []string{"1", "2"}},
	{name: "NoMatches", model: "note", query: "nonexistent", expectedIDs: []string{}},
	{name: "ModelNameIsNotSearchable", model: "note", query: "note", expectedIDs: []string{}},
	{name: "UnknownModel", model: "tag", query: "spring", expectedIDs: []string{}},
	{name: "UnterminatedPhraseMatchesWords", model: "note", query: `"spring release`, expectedIDs: []string{"2", "3"}},
	{name: "DanglingFieldMatchesWords", model: "note", query: "tomatoes:", expectedIDs: []string{"2"}},
	{name: "OnlyOperator", model: "note", query: "+", expectedIDs: []string{}},
}

func TestSearch(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)
	assert.NoError(db.BuildIndex(testDocuments))

	for _, testCase := range searchTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			sequence := db.Search(context.Background(), testCase.model, testCase.query)

			count, err := sequence.Count()
			assert.NoError(err)
			assert.Equal(len(testCase.expectedIDs), count)

			hits, err := sequence.Slice(0, 20)
			assert.NoError(err)
			assert.ElementsMatch(testCase.expectedIDs, objectIDs(hits))
			for _, hit := range hits {
				assert.Equal(testCase.model, hit.Model)
			}
		})
	}
}

var autocompleteTestCases = []struct {
	name        string
	model       string
	field       string
	query       string
	expectedIDs []string
}{
	{name: "Prefix", model: "note", field: "title", query: "gr", expectedIDs: []string{"1"}},
	{name: "PrefixMatchesSeveral", model: "note", field: "title", query: "g", expectedIDs: []string{"1", "2"}},
	{name: "PrefixUppercase", model: "note", field: "title", query: "GARD", expectedIDs: []string{"2"}},
	{name: "EveryTokenMustMatch", model: "person", field: "name", query: "gra hop", expectedIDs: []string{"1"}},
	{name: "OnlyConfiguredField", model: "note", field: "title", query: "tomat", expectedIDs: []string{}},
	{name: "EmptyQueryMatchesModel", model: "note", field: "title", query: "", expectedIDs: []string{"1", "2", "3"}},
	{name: "NoMatches", model: "person", field: "name", query: "zz", expectedIDs: []string{}},
}

func TestAutocomplete(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)
	assert.NoError(db.BuildIndex(testDocuments))

	for _, testCase := range autocompleteTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			sequence := db.Autocomplete(context.Background(), testCase.model, testCase.field, testCase.query)

			count, err := sequence.Count()
			assert.NoError(err)
			assert.Equal(len(testCase.expectedIDs), count)

			hits, err := sequence.Slice(0, 20)
			assert.NoError(err)
			assert.ElementsMatch(testCase.expectedIDs, objectIDs(hits))
		})
	}
}

func TestSliceWindowsAreStableAndDisjoint(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)

	documents := make([]Document, 0, 250)
	for i := 0; i < 250; i++ {
		documents = append(documents, Document{
			Model:    "note",
			ObjectID: fmt.Sprintf("%03d", i),
			Fields:   map[string]any{"title": "same title"},
		})
	}
	assert.NoError(db.BuildIndex(documents))

	docCount, err := db.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(250), docCount)

	sequence := db.Search(context.Background(), "note", "title")
	count, err := sequence.Count()
	assert.NoError(err)
	assert.Equal(250, count)

	seen := map[string]bool{}
	for start := 0; start < count; start += 40 {
		hits, err := sequence.Slice(start, start+40)
		assert.NoError(err)
		assert.LessOrEqual(len(hits), 40)
		for _, hit := range hits {
			assert.False(seen[hit.ObjectID], "object %s returned on two pages", hit.ObjectID)
			seen[hit.ObjectID] = true
		}
	}
	assert.Len(seen, 250)

	hits, err := sequence.Slice(240, 280)
	assert.NoError(err)
	assert.Len(hits, 10)

	hits, err = sequence.Slice(300, 320)
	assert.NoError(err)
	assert.Empty(hits)
}

func TestSliceBeforeCount(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)
	assert.NoError(db.BuildIndex(testDocuments))

	sequence := db.Search(context.Background(), "note", "")
	hits, err := sequence.Slice(0, 1)
	assert.NoError(err)
	assert.Len(hits, 1)

	count, err := sequence.Count()
	assert.NoError(err)
	assert.Equal(3, count)
}

func TestDeleteDocuments(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)
	assert.NoError(db.BuildIndex(testDocuments))

	assert.NoError(db.DeleteDocuments([]string{DocumentID("note", "1"), DocumentID("person", "2")}))

	docCount, err := db.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(len(testDocuments)-2), docCount)

	count, err := db.Search(context.Background(), "note", "grocery").Count()
	assert.NoError(err)
	assert.Zero(count)
}

func TestReopenExistingIndex(t *testing.T) {
	assert := require.New(t)
	testLogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	storagePath := t.TempDir()

	db, err := New(testLogger, storagePath, "index.bleve")
	assert.NoError(err)
	assert.NoError(db.BuildIndex(testDocuments))
	assert.NoError(db.Close())

	db, err = New(testLogger, storagePath, "index.bleve")
	assert.NoError(err, "existing index should be opened")
	defer db.Close()

	docCount, err := db.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(len(testDocuments)), docCount)
}

func TestParseDocumentID(t *testing.T) {
	assert := require.New(t)

	model, objectID := parseDocumentID(DocumentID("note", "a:b"))
	assert.Equal("note", model)
	assert.Equal("a:b", objectID)
}
