// Package validation checks inbound JSON payloads against the embedded
// JSON schemas before they are decoded.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"mesa-alloc/internal/core/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const baseURL = "https://mesa-alloc.local/schemas/"

// Schema names.
const (
	PassRequest     = "pass_request.json"
	PassTrigger     = "pass_trigger.json"
	SimulateRequest = "simulate_request.json"
)

// Validator holds the compiled schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	for _, e := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, err
		}
		if err := compiler.AddResource(baseURL+e.Name(), bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
	}

	v := &Validator{schemas: map[string]*jsonschema.Schema{}}
	for _, name := range []string{PassRequest, PassTrigger, SimulateRequest} {
		s, err := compiler.Compile(baseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// Validate checks raw against the named schema. Malformed JSON and schema
// violations are reported as domain.ErrInvalidParameters.
func (v *Validator) Validate(name string, raw []byte) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return fmt.Errorf("%w: malformed JSON: %w", domain.ErrInvalidParameters, err)
	}
	if err := s.Validate(payload); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidParameters, err)
	}
	return nil
}
