package generate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// responseSchemaDoc constrains the shape of a remote generation response
// before it is unmarshaled into GenResult: module_code and summary are
// required strings, and every op_list entry's "op" must be one of the
// primitives oplist.go actually interprets. Catching an unknown op name
// here produces a clearer attempt error than a generic json.Unmarshal
// failure or a later "unknown primitive operation" error at dispatch time.
const responseSchemaDoc = `{
	"type": "object",
	"required": ["module_code", "summary"],
	"properties": {
		"module_code": {"type": "string", "minLength": 1},
		"summary": {"type": "string"},
		"notes": {"type": "array", "items": {"type": "string"}},
		"tests": {"type": "array", "items": {"type": "string"}},
		"op_list": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["op"],
				"properties": {
					"op": {
						"type": "string",
						"enum": ["http_get", "http_post", "file_read", "file_write", "string_concat", "literal"]
					},
					"params": {"type": "object"}
				}
			}
		}
	}
}`

var (
	responseSchemaOnce sync.Once
	responseSchema     *jsonschema.Schema
	responseSchemaErr  error
)

// compiledResponseSchema compiles responseSchemaDoc once and caches it.
func compiledResponseSchema() (*jsonschema.Schema, error) {
	responseSchemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(responseSchemaDoc), &doc); err != nil {
			responseSchemaErr = fmt.Errorf("unmarshal response schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("generation-response.json", doc); err != nil {
			responseSchemaErr = fmt.Errorf("add response schema resource: %w", err)
			return
		}
		responseSchema, responseSchemaErr = c.Compile("generation-response.json")
	})
	return responseSchema, responseSchemaErr
}

// validateResponseShape checks raw against responseSchemaDoc before it is
// unmarshaled into GenResult.
func validateResponseShape(raw []byte) error {
	schema, err := compiledResponseSchema()
	if err != nil {
		return fmt.Errorf("generation response schema unavailable: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal generation response: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("generation response failed schema validation: %w", err)
	}
	return nil
}
