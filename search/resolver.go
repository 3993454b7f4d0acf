package search

import "strings"

// filenameMunge undoes the title derivation (space to underscore) and
// strips path separators so a synthesized name stays inside the notes
// directory.
var filenameMunge = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// Resolver turns user-typed query text into result entries and titles
// into on-disk filenames.
type Resolver struct {
	idx NoteIndexer
	ext string
}

// NewResolver wraps an indexer. ext is the note file extension, dot
// included, appended to synthesized filenames.
func NewResolver(idx NoteIndexer, ext string) *Resolver {
	return &Resolver{idx: idx, ext: ext}
}

// Resolve returns the entries for the given query text. A blank query
// lists every note sorted by title; anything else is an incremental
// free-text search.
func (r *Resolver) Resolve(text string) ([]Entry, error) {
	if strings.TrimSpace(text) == "" {
		return r.idx.All()
	}
	return r.idx.Query(text)
}

// ResolveFilename maps a title to the filename that should be opened for
// it. If an indexed note carries that title (compared case-insensitively,
// first hit in relevance order wins) its stored filename is returned.
// Otherwise a filename is synthesized from the title, so the result is
// always usable: opening it creates the note.
func (r *Resolver) ResolveFilename(title string) (string, error) {
	hits, err := r.idx.ExactTitle(title)
	if err != nil {
		return "", err
	}
	for _, hit := range hits {
		if strings.EqualFold(hit.Title, title) {
			return hit.Filename, nil
		}
	}
	// No such note yet. Munge the title back into a filename and give it
	// the default extension; opening the result creates the note.
	return filenameMunge.Replace(title) + r.ext, nil
}

// Complete returns the titles matching a partially typed prefix, for use
// as completion candidates.
func (r *Resolver) Complete(prefix string) ([]string, error) {
	hits, err := r.Resolve(prefix)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(hits))
	for _, hit := range hits {
		titles = append(titles, hit.Title)
	}
	return titles, nil
}
