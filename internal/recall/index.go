// Package recall provides ranked full-text search over conversation events.
// It complements the memory store's substring-based topic recall with a
// BM25-scored view, backed by an in-memory bleve index that lives and dies
// with the session.
package recall

import (
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/sidecue/sidecue/internal/memory"
)

// Result is one ranked hit from the transcript index.
type Result struct {
	EventID   string
	Score     float64
	Role      string
	Action    string
	Timestamp time.Time
}

// Index is a memory-only bleve index over conversation events. It implements
// memory.EventIndexer so the store can feed it on every append and prune.
type Index struct {
	index bleve.Index
}

// NewIndex creates a fresh in-memory transcript index.
func NewIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript index: %w", err)
	}
	return &Index{index: index}, nil
}

// buildIndexMapping creates the index mapping for conversation events.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	eventMapping := bleve.NewDocumentMapping()

	roleField := bleve.NewTextFieldMapping()
	roleField.Analyzer = keyword.Name
	roleField.Store = true
	roleField.Index = true
	eventMapping.AddFieldMappingsAt("role", roleField)

	actionField := bleve.NewTextFieldMapping()
	actionField.Analyzer = keyword.Name
	actionField.Store = true
	actionField.Index = true
	eventMapping.AddFieldMappingsAt("action", actionField)

	tsField := bleve.NewTextFieldMapping()
	tsField.Analyzer = keyword.Name
	tsField.Store = true
	tsField.Index = false
	eventMapping.AddFieldMappingsAt("ts", tsField)

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name
	contentField.Store = false
	contentField.Index = true
	eventMapping.AddFieldMappingsAt("content", contentField)

	indexMapping.DefaultMapping = eventMapping
	return indexMapping
}

// IndexEvent adds or replaces one event in the index.
func (ix *Index) IndexEvent(ev memory.Event) error {
	if ev.Content == "" {
		return nil
	}
	doc := map[string]interface{}{
		"role":    string(ev.Role),
		"action":  string(ev.Action),
		"ts":      ev.Timestamp.UTC().Format(time.RFC3339Nano),
		"content": ev.Content,
	}
	return ix.index.Index(ev.ID, doc)
}

// RemoveEvent drops a pruned event from the index.
func (ix *Index) RemoveEvent(id string) error {
	return ix.index.Delete(id)
}

// Search returns the top k events matching the query, best score first.
func (ix *Index) Search(query string, k int) ([]Result, error) {
	if query == "" || k <= 0 {
		return nil, nil
	}

	q := bleve.NewMatchQuery(query)
	q.SetField("content")

	searchRequest := bleve.NewSearchRequest(q)
	searchRequest.Size = k
	searchRequest.Fields = []string{"role", "action", "ts"}

	searchResult, err := ix.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("transcript search failed: %w", err)
	}

	results := make([]Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		result := Result{
			EventID: hit.ID,
			Score:   hit.Score,
		}
		if role, ok := hit.Fields["role"].(string); ok {
			result.Role = role
		}
		if action, ok := hit.Fields["action"].(string); ok {
			result.Action = action
		}
		if ts, ok := hit.Fields["ts"].(string); ok {
			if parsed, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
				result.Timestamp = parsed
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// DocCount reports how many events are currently indexed.
func (ix *Index) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.index.Close()
}
