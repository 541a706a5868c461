package frontend

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// DocumentVersion is the interchange format version this build reads.
const DocumentVersion = 1

const schemaURL = "https://searchdeadcode.dev/schema/document.json"

//go:embed document.schema.json
var documentSchema []byte

// ErrInvalidDocument is returned for documents that fail schema validation.
var ErrInvalidDocument = errors.New("invalid parser-output document")

// Document is the parser-output interchange format. External front-ends,
// such as a Kotlin extractor, write one document per module or source set.
type Document struct {
	Version   int                 `json:"version" yaml:"version"`
	Generator string              `json:"generator,omitempty" yaml:"generator,omitempty"`
	Files     []models.ParsedFile `json:"files" yaml:"files"`
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(documentSchema))
		if err != nil {
			schemaErr = fmt.Errorf("decode document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// ReadDocumentJSON decodes and validates a JSON document.
func ReadDocumentJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeDocument(data)
}

// ReadDocumentYAML decodes a YAML document and validates it against the same
// schema as JSON.
func ReadDocumentYAML(r io.Reader) (*Document, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return decodeDocument(data)
}

func decodeDocument(data []byte) (*Document, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	for i := range doc.Files {
		normalize(&doc.Files[i])
	}
	return &doc, nil
}

// normalize fills fields that documents may leave implicit: ids and
// locations default to the enclosing file, declarations to the file's
// language, and visibility to public.
func normalize(f *models.ParsedFile) {
	fill := func(id *models.DeclarationID) {
		if id != nil && id.File == "" {
			id.File = f.Path
		}
	}
	if f.Declarations == nil {
		f.Declarations = []models.Declaration{}
	}
	if f.References == nil {
		f.References = []models.UnresolvedReference{}
	}
	for i := range f.Declarations {
		d := &f.Declarations[i]
		fill(&d.ID)
		fill(d.Parent)
		if d.Location.File == "" {
			d.Location.File = f.Path
		}
		if d.Language == "" {
			d.Language = f.Language
		}
		if d.Visibility == "" {
			d.Visibility = models.VisibilityPublic
		}
	}
	for i := range f.References {
		r := &f.References[i]
		fill(&r.From)
		if r.Location.File == "" {
			r.Location.File = f.Path
		}
	}
}
