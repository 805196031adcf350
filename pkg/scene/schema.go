package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// documentSchema is the JSON schema diagram documents must satisfy
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["cells"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "cells": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "kind"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "kind": {"type": "string", "enum": ["node", "connector"]},
          "attributes": {"type": ["object", "null"]}
        },
        "allOf": [{
          "if": {"properties": {"kind": {"const": "connector"}}},
          "then": {
            "required": ["attributes"],
            "properties": {
              "attributes": {
                "type": "object",
                "required": ["source", "target"],
                "properties": {
                  "source": {"type": "string"},
                  "target": {"type": "string"}
                }
              }
            }
          }
        }]
      }
    }
  }
}`

var documentSchemaLoader = gojsonschema.NewStringLoader(documentSchema)

// ValidateDocument validates diagram YAML bytes against the document schema
func ValidateDocument(yamlBytes []byte) error {
	if len(yamlBytes) == 0 {
		return errors.New("empty YAML input")
	}

	var raw any
	if err := yaml.Unmarshal(yamlBytes, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML for validation: %w", err)
	}

	// Round-trip through JSON so the validator sees JSON-compatible types
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to convert diagram to JSON for validation: %w", err)
	}
	var data any
	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return fmt.Errorf("failed to unmarshal diagram JSON: %w", err)
	}

	result, err := gojsonschema.Validate(documentSchemaLoader, gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return fmt.Errorf("%w: schema validation failed: %s", ErrInvalidCell, strings.Join(msgs, "; "))
	}

	return nil
}
