// pkg/templatedoc/templatedoc.go
package templatedoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidDocument = errors.New("invalid template document")

// ValidationError lists every structural problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["slide_types"],
  "definitions": {
    "position": {
      "type": "object",
      "properties": {
        "left": {"type": "number", "minimum": 0},
        "top": {"type": "number", "minimum": 0},
        "width": {"type": "number", "minimum": 0},
        "height": {"type": "number", "minimum": 0},
        "max_width": {"type": "number", "minimum": 0},
        "max_height": {"type": "number", "minimum": 0}
      }
    },
    "layout": {
      "type": "object",
      "properties": {
        "layout_index": {
          "oneOf": [
            {"type": "integer", "minimum": 0},
            {"type": "string", "enum": ["blank"]}
          ]
        },
        "background": {
          "type": "object",
          "required": ["type"],
          "properties": {
            "type": {"type": "string", "enum": ["solid", "gradient"]},
            "color": {"type": "string"},
            "color_start": {"type": "string"},
            "color_end": {"type": "string"}
          }
        },
        "elements": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["type"],
            "properties": {
              "type": {"type": "string", "enum": ["textbox", "image", "shape"]},
              "name": {"type": "string"},
              "position": {"$ref": "#/definitions/position"},
              "position_horizontal": {"$ref": "#/definitions/position"},
              "position_vertical": {"$ref": "#/definitions/position"},
              "style": {"type": "object"},
              "shape_type": {"type": "string"},
              "requires": {"type": "string"},
              "default": {"type": "string"},
              "shift": {
                "type": "object",
                "required": ["field", "dy"],
                "properties": {
                  "field": {"type": "string"},
                  "over": {"type": "integer"},
                  "dy": {"type": "number"}
                }
              }
            }
          }
        }
      }
    }
  },
  "properties": {
    "template_info": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "version": {"type": "string"},
        "slide_width": {"type": "number", "exclusiveMinimum": 0},
        "slide_height": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "slide_types": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["type_id"],
        "properties": {
          "type_id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "description": {"type": "string"},
          "llm_instruction": {"type": "string"},
          "json_schema": {"type": "object"},
          "layout": {"$ref": "#/definitions/layout"},
          "pptx_layout": {"$ref": "#/definitions/layout"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// LoadDocument reads and parses a template document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// ParseDocument validates data against the document schema and decodes it.
func ParseDocument(data []byte) (*Document, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("parse: %v", err)}}
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("decode: %v", err)}}
	}
	return &doc, nil
}

// Validate checks a decoded JSON value against the document schema.
func Validate(raw interface{}) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			problems[i] = desc.String()
		}
		return &ValidationError{Problems: problems}
	}
	return nil
}
