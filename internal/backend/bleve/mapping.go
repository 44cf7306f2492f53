package bleve

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/advsearch/internal/domain/document"
)

// Mapping returns the index mapping for documents. Free-text fields are
// analyzed; filter fields are indexed as exact keywords.
func Mapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	for _, name := range []string{document.FieldName, document.FieldText} {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = standard.Name
		f.Store = true
		f.IncludeTermVectors = true
		docMapping.AddFieldMappingsAt(name, f)
	}

	for _, name := range []string{document.FieldSource, document.FieldAuthor, document.FieldStatus} {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = true
		docMapping.AddFieldMappingsAt(name, f)
	}

	docMapping.AddFieldMappingsAt(document.FieldTime, bleve.NewDateTimeFieldMapping())
	docMapping.AddFieldMappingsAt(document.FieldTicketID, bleve.NewNumericFieldMapping())

	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(document.FieldID, idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}
