package messages

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Embedded request body schemas.
const (
	SchemaTerminalCommand = "terminal_command.json"
	SchemaSessionPrefs    = "session_prefs.json"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaSet  map[string]*jsonschema.Schema
	schemaErr  error
)

func compileSchemas() {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		schemaErr = err
		return
	}
	c := jsonschema.NewCompiler()
	for _, e := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			schemaErr = err
			return
		}
		if err := c.AddResource(e.Name(), bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("add schema %s: %w", e.Name(), err)
			return
		}
	}
	schemaSet = make(map[string]*jsonschema.Schema, len(entries))
	for _, e := range entries {
		s, err := c.Compile(e.Name())
		if err != nil {
			schemaErr = fmt.Errorf("compile schema %s: %w", e.Name(), err)
			return
		}
		schemaSet[e.Name()] = s
	}
}

// ValidateJSON checks data against the named embedded schema.
func ValidateJSON(schema string, data []byte) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	s, ok := schemaSet[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("schema %s: %w", schema, err)
	}
	return nil
}
