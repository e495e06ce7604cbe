package form

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// requestSchema describes a generate request body: Input fields plus an optional
// preset name.
const requestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "preset":           {"type": "string", "maxLength": 128},
    "role":             {"type": "string", "maxLength": 200},
    "audience":         {"type": "string", "maxLength": 200},
    "tone":             {"type": "string", "maxLength": 200},
    "output_format":    {"type": "string", "maxLength": 200},
    "task":             {"type": "string"},
    "extra_context":    {"type": "string"},
    "language":         {"type": "string", "maxLength": 100},
    "max_length_words": {"type": "integer", "minimum": 1, "maximum": 100000},
    "checklist":        {"type": "boolean"},
    "placeholders":     {"type": "boolean"},
    "safety":           {"type": "boolean"},
    "quality_bar":      {"type": "boolean"},
    "reference_policy": {"type": "boolean"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func requestValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("request.json", strings.NewReader(requestSchema)); err != nil {
			schemaErr = fmt.Errorf("load request schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("request.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile request schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateRequestJSON checks a raw generate request body against the request schema.
func ValidateRequestJSON(data []byte) error {
	schema, err := requestValidator()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("request does not match schema: %w", err)
	}
	return nil
}
