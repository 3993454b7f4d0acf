package bleve_indexer

import "strings"

// Bleve field names, shared by the index mapping and the queries.
const (
	fieldTitle    = "title"
	fieldBody     = "body"
	fieldSort     = "sort"
	fieldFilename = "filename"
)

// idPrefix marks note document IDs. The ID is the upsert key: indexing a
// document under an existing ID replaces it, so at most one entry exists
// per title.
const idPrefix = "Q"

// noteDocument is the indexed representation of a single note.
//
// Title is the human-readable display value. Sort is its lowercase form,
// indexed verbatim so listings come back in stable alphabetical order.
// Filename is a stored-only payload: it is never searched, and it is the
// filename rather than the title so the two can diverge if a rename is
// only partially applied.
type noteDocument struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Sort     string `json:"sort"`
	Filename string `json:"filename"`
}

// NoteTitle derives the display title from an on-disk name: the note
// extension is stripped and underscores become spaces.
func NoteTitle(filename, ext string) string {
	return strings.ReplaceAll(strings.TrimSuffix(filename, ext), "_", " ")
}

// newNoteDocument builds the indexable document and its ID for a note.
func newNoteDocument(filename, body, ext string) (string, noteDocument) {
	title := NoteTitle(filename, ext)
	return idPrefix + title, noteDocument{
		Title:    title,
		Body:     body,
		Sort:     strings.ToLower(title),
		Filename: filename,
	}
}
