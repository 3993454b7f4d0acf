package bleve_indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/samber/lo"

	_ "github.com/blevesearch/bleve/v2/config"
	bleveSearch "github.com/blevesearch/bleve/v2/search"

	"github.com/cwoac/nvvim/search"
	"github.com/cwoac/nvvim/utils"
)

// BleveIndexer is the bleve-backed implementation of search.NoteIndexer.
//
// The index lives on disk at indexPath and holds exactly one document per
// note title. The handle is nil between Close and Open (and transiently
// during Rebuild); every operation on a nil handle fails with
// search.ErrStorageUnavailable.
//
// Safe for concurrent use: the session and the directory watcher share
// one instance.
type BleveIndexer struct {
	root      string
	ext       string
	lang      string
	indexPath string

	mu       sync.Mutex
	index    bleve.Index
	stemming bool
}

// Verify BleveIndexer satisfies the indexer interface at compile time.
var _ search.NoteIndexer = (*BleveIndexer)(nil)

// New opens or creates the index described by the config.
func New(config *utils.Config) (*BleveIndexer, error) {
	if err := os.MkdirAll(filepath.Dir(config.IndexPath), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrStorageUnavailable, err)
	}

	s := &BleveIndexer{
		root:      config.RootPath,
		ext:       config.Extension,
		lang:      config.Language,
		indexPath: config.IndexPath,
	}
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// Stemming reports whether the index analyzer stems terms. It is false
// when the engine has no stemmer for the configured language.
func (s *BleveIndexer) Stemming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stemming
}

// Open opens the index at its on-disk location, creating a fresh one if
// none exists yet.
func (s *BleveIndexer) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *BleveIndexer) openLocked() error {
	if s.index != nil {
		return nil
	}

	// The stemmer capability check runs regardless of whether the index
	// already exists, so Stemming reports the fallback either way.
	im, stemming, err := buildIndexMapping(s.lang)
	if err != nil {
		return err
	}
	s.stemming = stemming

	index, err := bleve.Open(s.indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(s.indexPath, im)
	}
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", search.ErrStorageUnavailable, s.indexPath, err)
	}

	s.index = index
	return nil
}

// Close releases the index handle.
func (s *BleveIndexer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return search.ErrStorageUnavailable
	}
	err := s.index.Close()
	s.index = nil
	return err
}

// UpdateFile reads the named note from the notes directory and
// replaces-or-inserts its entry. The same call handles both newly created
// and edited notes.
func (s *BleveIndexer) UpdateFile(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateFileLocked(filename)
}

func (s *BleveIndexer) updateFileLocked(filename string) error {
	if s.index == nil {
		return search.ErrStorageUnavailable
	}

	data, err := os.ReadFile(filepath.Join(s.root, filename))
	if err != nil {
		return fmt.Errorf("read note: %w", err)
	}

	id, doc := newNoteDocument(filename, string(data), s.ext)
	if err := s.index.Index(id, doc); err != nil {
		return fmt.Errorf("index %s: %w", filename, err)
	}
	return nil
}

// Rebuild discards the index and reindexes every matching file in the
// notes directory. The old index directory is renamed into a fresh
// temporary sibling before a new empty index is created in its place, so
// the live index never contains stale entries for deleted or renamed
// notes. Cleanup of the renamed directory is best effort: failures are
// logged and the rebuilt index is still valid.
func (s *BleveIndexer) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return search.ErrStorageUnavailable
	}

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("%w: close for rebuild: %v", search.ErrStorageUnavailable, err)
	}
	s.index = nil

	tmpdir, err := os.MkdirTemp(filepath.Dir(s.indexPath), ".rebuild-")
	if err != nil {
		return fmt.Errorf("%w: %v", search.ErrStorageUnavailable, err)
	}
	err = os.Rename(s.indexPath, filepath.Join(tmpdir, filepath.Base(s.indexPath)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: discard old index: %v", search.ErrStorageUnavailable, err)
	}
	removeTree(tmpdir)

	if err := s.openLocked(); err != nil {
		return err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("scan notes dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.ext) {
			continue
		}
		if err := s.updateFileLocked(entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

// All returns every indexed note sorted ascending by lowercase title.
func (s *BleveIndexer) All() ([]search.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allLocked()
}

func (s *BleveIndexer) allLocked() ([]search.Entry, error) {
	if s.index == nil {
		return nil, search.ErrStorageUnavailable
	}

	count, err := s.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrStorageUnavailable, err)
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	req.SortBy([]string{fieldSort})
	req.Fields = []string{fieldTitle, fieldFilename}
	return s.runSearch(req)
}

// Query runs an incremental free-text query in relevance order. A
// trailing wildcard is appended so the word still being typed matches as
// a prefix. Wildcard terms bypass the analyzer, so the query text is
// lowercased to line up with the indexed terms.
func (s *BleveIndexer) Query(text string) ([]search.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil, search.ErrStorageUnavailable
	}

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return s.allLocked()
	}
	if !strings.HasSuffix(text, "*") {
		text += "*"
	}

	count, err := s.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrStorageUnavailable, err)
	}

	req := bleve.NewSearchRequest(bleve.NewQueryStringQuery(text))
	req.Size = int(count)
	req.Fields = []string{fieldTitle, fieldFilename}
	req.Highlight = bleve.NewHighlightWithStyle("ansi")
	return s.runSearch(req)
}

// ExactTitle queries the title field only, in relevance order. Callers
// pick the hit whose title matches; typically there is one.
func (s *BleveIndexer) ExactTitle(title string) ([]search.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil, search.ErrStorageUnavailable
	}
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}

	count, err := s.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrStorageUnavailable, err)
	}

	query := bleve.NewMatchQuery(title)
	query.SetField(fieldTitle)

	req := bleve.NewSearchRequest(query)
	req.Size = int(count)
	req.Fields = []string{fieldTitle, fieldFilename}
	return s.runSearch(req)
}

func (s *BleveIndexer) runSearch(req *bleve.SearchRequest) ([]search.Entry, error) {
	result, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return lo.Map(result.Hits, func(hit *bleveSearch.DocumentMatch, _ int) search.Entry {
		return search.Entry{
			Title:    stringField(hit, fieldTitle),
			Filename: stringField(hit, fieldFilename),
			Fragment: firstFragment(hit, fieldBody),
		}
	}), nil
}

func stringField(hit *bleveSearch.DocumentMatch, field string) string {
	if v, ok := hit.Fields[field].(string); ok {
		return v
	}
	return ""
}

func firstFragment(hit *bleveSearch.DocumentMatch, field string) string {
	if frags := hit.Fragments[field]; len(frags) > 0 {
		return frags[0]
	}
	return ""
}

// removeTree deletes path recursively. Entries that cannot be removed are
// logged and skipped rather than aborting the walk; the caller never
// depends on this cleanup succeeding.
func removeTree(path string) {
	entries, err := os.ReadDir(path)
	if err != nil {
		log.Printf("rebuild: read %s: %v", path, err)
	}
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			removeTree(child)
			continue
		}
		if err := os.Remove(child); err != nil {
			log.Printf("rebuild: remove %s: %v", child, err)
		}
	}
	if err := os.Remove(path); err != nil {
		log.Printf("rebuild: remove %s: %v", path, err)
	}
}
