package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidPayload matches every *PayloadError.
var ErrInvalidPayload = errors.New("invalid payload")

// PayloadError reports a request body that is not JSON or does not match
// its schema.
type PayloadError struct {
	Schema string
	Err    error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Schema, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

func (e *PayloadError) Is(target error) bool { return target == ErrInvalidPayload }

// bodySchema is a named JSON Schema for a request body.
type bodySchema struct {
	Name       string
	Definition map[string]any
}

var (
	initSchema = bodySchema{
		Name: "init",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"gradeId"},
			"properties": map[string]any{
				"gradeId": map[string]any{"type": "string", "minLength": 1},
			},
		},
	}

	lessonSchema = bodySchema{
		Name: "lesson",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"lessonId"},
			"properties": map[string]any{
				"lessonId":  map[string]any{"type": "string", "minLength": 1},
				"score":     map[string]any{"type": "integer", "minimum": 0},
				"timeSpent": map[string]any{"type": "integer", "minimum": 0},
				"module":    map[string]any{"type": "integer", "minimum": 0},
			},
		},
	}

	moduleSchema = bodySchema{
		Name: "module",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"module"},
			"properties": map[string]any{
				"module": map[string]any{"type": "integer"},
			},
		},
	}

	resetSchema = bodySchema{
		Name: "reset",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"gradeId"},
			"properties": map[string]any{
				"gradeId": map[string]any{"type": "string", "minLength": 1},
				"confirm": map[string]any{"type": "boolean"},
			},
		},
	}
)

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// decodeBody validates raw against schema and then decodes it into dst.
// An empty body is validated as {}.
func decodeBody(schema bodySchema, raw []byte, dst any) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &PayloadError{Schema: schema.Name, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return &PayloadError{Schema: schema.Name, Err: err}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return &PayloadError{Schema: schema.Name, Err: err}
	}
	return nil
}

func compiledSchema(schema bodySchema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
