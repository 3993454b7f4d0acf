package search

import "errors"

// ErrStorageUnavailable is returned when the backing index cannot be
// opened, read or written. Callers should abort the current operation and
// leave prior state untouched.
var ErrStorageUnavailable = errors.New("search: storage unavailable")

// Entry is one indexed note as returned from a query.
type Entry struct {
	Title    string // display title: filename with extension stripped and _ mapped to space
	Filename string // on-disk name, stored as opaque payload; may diverge from Title
	Fragment string // optional highlighted body fragment for display
}

// NoteIndexer is the persistent index over a directory of notes.
// Consumers should depend on this interface rather than the concrete
// bleve-backed type to facilitate testing with fakes.
//
// Absence is never an error: queries on an empty index return empty
// slices. There is no targeted delete; deletion is realized by Rebuild,
// which rescans the notes directory from scratch.
type NoteIndexer interface {
	// UpdateFile reads the named note from the notes directory and
	// replaces-or-inserts its index entry.
	UpdateFile(filename string) error

	// Rebuild atomically discards the index and reindexes every note
	// file currently on disk.
	Rebuild() error

	// All returns every entry, sorted ascending by lowercase title.
	All() ([]Entry, error)

	// Query runs an incremental free-text query. The final in-progress
	// term matches as a prefix, so partially typed words still hit.
	Query(text string) ([]Entry, error)

	// ExactTitle queries the title field only, in relevance order.
	ExactTitle(title string) ([]Entry, error)

	// Open reopens a previously closed index handle.
	Open() error

	// Close releases the index. Further calls (other than Open) fail
	// with ErrStorageUnavailable.
	Close() error
}
