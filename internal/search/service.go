package search

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	appErrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

// DefaultLimit is the number of results returned when none is configured.
const DefaultLimit = 5

// MaxQueryLength bounds what the service will tokenize.
const MaxQueryLength = 200

// LoadContent reads a list of documents from a YAML or JSON file. An empty
// path yields no documents.
func LoadContent(path string) ([]Document, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to read search content")
	}
	var docs []Document
	if err := yaml.Unmarshal(raw, &docs); err != nil {
		return nil, appErrors.NewConfiguration("search content " + path + " is not a document list")
	}
	return docs, nil
}

// NodeDocuments turns every graph node into a document that routes to the
// node's page.
func NodeDocuments(g *graph.Graph) []Document {
	docs := make([]Document, 0, g.Len())
	for _, n := range g.Nodes() {
		text := strings.Join(append([]string{n.Summary, n.Description}, n.Tags...), " ")
		docs = append(docs, Document{
			ID:      "node-" + n.ID,
			Title:   n.Title,
			Text:    strings.TrimSpace(text),
			URL:     n.Path(),
			Section: n.Size.SectionLabel(),
		})
	}
	return docs
}

// Service owns the live index and rebuilds it when the graph changes.
type Service struct {
	mu      sync.RWMutex
	index   *Index
	content []Document
	limit   int
	logger  *zap.Logger
}

// NewService indexes content plus the nodes of g.
func NewService(content []Document, g *graph.Graph, limit int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Service{content: content, limit: limit, logger: logger}
	s.Rebuild(g)
	return s
}

// Rebuild replaces the index with one over the content and g's nodes.
func (s *Service) Rebuild(g *graph.Graph) {
	docs := append([]Document(nil), s.content...)
	if g != nil {
		docs = append(docs, NodeDocuments(g)...)
	}
	ix := NewIndex(docs...)

	s.mu.Lock()
	s.index = ix
	s.mu.Unlock()

	s.logger.Debug("Search index rebuilt", zap.Int("documents", ix.Len()))
}

// Search runs query against the current index. A blank query has no
// results; an oversized one is rejected.
func (s *Service) Search(query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) > MaxQueryLength {
		return nil, appErrors.NewValidation("query is too long")
	}
	if query == "" {
		return []Result{}, nil
	}

	s.mu.RLock()
	ix := s.index
	s.mu.RUnlock()

	results := ix.Search(query, s.limit)
	if results == nil {
		results = []Result{}
	}
	s.logger.Debug("Search executed", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}
