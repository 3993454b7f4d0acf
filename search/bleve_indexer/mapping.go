package bleve_indexer

import (
	"fmt"
	"log"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/snowball"
	unicodetok "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// snowballNames maps config language codes to the names the snowball
// stemmer filter understands.
var snowballNames = map[string]string{
	"da": "danish",
	"de": "german",
	"en": "english",
	"es": "spanish",
	"fi": "finnish",
	"fr": "french",
	"hu": "hungarian",
	"it": "italian",
	"nl": "dutch",
	"no": "norwegian",
	"pt": "portuguese",
	"ro": "romanian",
	"ru": "russian",
	"sv": "swedish",
	"tr": "turkish",
}

// buildIndexMapping builds the note mapping for the given stemming
// language. The second return reports whether stemming is actually in
// effect: if the engine has no stemmer for the language, the analyzer
// falls back to lowercasing only and a warning is logged, rather than
// failing index construction.
func buildIndexMapping(lang string) (*mapping.IndexMappingImpl, bool, error) {
	im := bleve.NewIndexMapping()

	language, ok := snowballNames[lang]
	if !ok {
		language = lang
	}

	stemming := true
	filters := []string{lowercase.Name}
	stemmerName := "stemmer_" + lang
	err := im.AddCustomTokenFilter(stemmerName, map[string]interface{}{
		"type":     snowball.Name,
		"language": language,
	})
	if err != nil {
		log.Printf("index: no %q stemmer available, indexing without stemming: %v", lang, err)
		stemming = false
	} else {
		filters = append(filters, stemmerName)
	}

	analyzerName := "note_" + lang
	if err := im.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicodetok.Name,
		"token_filters": filters,
	}); err != nil {
		return nil, false, fmt.Errorf("build analyzer: %w", err)
	}

	// Title and body are both reachable from free-text queries via the
	// composite _all field; the field boundary keeps phrases from
	// matching across the title/body join. Exact-title queries bind to
	// the title field directly.
	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = analyzerName
	titleField.Store = true

	bodyField := bleve.NewTextFieldMapping()
	bodyField.Analyzer = analyzerName
	bodyField.Store = true

	// Keyword-analyzed lowercase title: one term per document, used only
	// for alphabetical ordering.
	sortField := bleve.NewTextFieldMapping()
	sortField.Analyzer = keyword.Name
	sortField.IncludeInAll = false

	// Payload: retrievable, never searchable.
	fileField := bleve.NewTextFieldMapping()
	fileField.Index = false
	fileField.Store = true
	fileField.IncludeInAll = false

	note := bleve.NewDocumentMapping()
	note.AddFieldMappingsAt(fieldTitle, titleField)
	note.AddFieldMappingsAt(fieldBody, bodyField)
	note.AddFieldMappingsAt(fieldSort, sortField)
	note.AddFieldMappingsAt(fieldFilename, fileField)

	im.DefaultMapping = note
	im.DefaultAnalyzer = analyzerName

	return im, stemming, nil
}
