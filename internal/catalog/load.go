package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

//go:embed cmmc_l1.json
var defaultCatalogJSON []byte

const schemaURL = "schema://questionnaire.json"

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once

	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// document is the on-disk questionnaire layout.
type document struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	Questions []Question `json:"questions"`
}

// Default returns the embedded CMMC Level 1 catalog.
// It panics if the embedded data is invalid, which is a build defect.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := Load(defaultCatalogJSON)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded questionnaire is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// DefaultJSON returns the raw embedded questionnaire document.
func DefaultJSON() []byte {
	return bytes.Clone(defaultCatalogJSON)
}

// LoadFile reads and validates a questionnaire document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(data)
}

// LoadReader reads and validates a questionnaire document from r.
func LoadReader(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(data)
}

// Load validates a questionnaire document against the embedded JSON Schema
// and builds a Catalog from it.
func Load(data []byte) (*Catalog, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return newCatalog(doc.Name, doc.Version, doc.Questions)
}

// MarshalJSON encodes the catalog in the questionnaire document layout.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{
		Name:      c.name,
		Version:   c.version,
		Questions: c.questions,
	})
}

func validateDocument(data []byte) error {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("invalid catalog JSON: %w", err)
	}

	sch, err := getSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

func getSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			compiledSchemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compiledSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, compiledSchemaErr
}
