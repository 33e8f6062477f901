package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/gofrs/flock"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
)

// NameHit is one full-text match against the names index.
type NameHit struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// NamesIndex is a Bleve full-text index over sequence names. Builds are
// guarded by a cross-process file lock so two processes never write the
// same index directory at once.
type NamesIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	path  string
}

type nameDoc struct {
	Name string `json:"name"`
}

func namesIndexMapping() (mapping.IndexMapping, error) {
	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = standard.Name
	nameField.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", nameField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m, nil
}

// OpenNamesIndex opens an existing names index, or creates an empty one.
// An empty path creates an in-memory index for testing.
func OpenNamesIndex(path string) (*NamesIndex, error) {
	m, err := namesIndexMapping()
	if err != nil {
		return nil, seqerrors.New(seqerrors.ErrCodeCorruptIndex, "cannot build index mapping", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			if mkErr := os.MkdirAll(filepath.Dir(path), 0755); mkErr != nil {
				return nil, seqerrors.New(seqerrors.ErrCodeCorruptIndex,
					fmt.Sprintf("cannot create index directory for %s", path), mkErr)
			}
			idx, err = bleve.New(path, m)
		}
	}
	if err != nil {
		return nil, seqerrors.New(seqerrors.ErrCodeCorruptIndex,
			fmt.Sprintf("cannot open names index at %s", path), err)
	}

	return &NamesIndex{index: idx, path: path}, nil
}

// Build indexes every name from the names dump, replacing prior contents
// document by document. The build holds an exclusive file lock next to
// the index; a second builder fails fast instead of corrupting the index.
func (n *NamesIndex) Build(names *Names) error {
	if n.path != "" {
		lock := flock.New(n.path + ".lock")
		acquired, err := lock.TryLock()
		if err != nil {
			return seqerrors.New(seqerrors.ErrCodeIndexLocked, "cannot acquire index lock", err)
		}
		if !acquired {
			return seqerrors.New(seqerrors.ErrCodeIndexLocked,
				"names index is being built by another process", nil).
				WithSuggestion("wait for the other build to finish and retry")
		}
		defer lock.Unlock()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	batch := n.index.NewBatch()
	count := 0
	for id, name := range names.All() {
		if err := batch.Index(id, nameDoc{Name: name}); err != nil {
			return seqerrors.New(seqerrors.ErrCodeCorruptIndex,
				fmt.Sprintf("cannot index %s", id), err)
		}
		count++
		if count%1000 == 0 {
			if err := n.index.Batch(batch); err != nil {
				return seqerrors.New(seqerrors.ErrCodeCorruptIndex, "batch write failed", err)
			}
			batch = n.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := n.index.Batch(batch); err != nil {
			return seqerrors.New(seqerrors.ErrCodeCorruptIndex, "batch write failed", err)
		}
	}
	return nil
}

// Search runs a full-text match query over sequence names.
func (n *NamesIndex) Search(text string, limit int) ([]NameHit, error) {
	if limit <= 0 {
		limit = 10
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	q := bleve.NewMatchQuery(text)
	q.SetField("name")

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"name"}

	res, err := n.index.Search(req)
	if err != nil {
		return nil, seqerrors.New(seqerrors.ErrCodeCorruptIndex, "names search failed", err)
	}

	hits := make([]NameHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		name, _ := h.Fields["name"].(string)
		hits = append(hits, NameHit{ID: h.ID, Name: name, Score: h.Score})
	}
	return hits, nil
}

// DocCount returns the number of indexed names.
func (n *NamesIndex) DocCount() (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index.DocCount()
}

// Close releases the underlying index.
func (n *NamesIndex) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index.Close()
}
