package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const structureSchema = `{
  "type": "object",
  "required": ["title", "chapters"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "chapters": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "sections"],
        "properties": {
          "id": {"type": ["integer", "string"]},
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "sections": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["title"],
              "properties": {
                "id": {"type": ["string", "number"]},
                "title": {"type": "string", "minLength": 1}
              }
            }
          }
        }
      }
    }
  }
}`

const sectionContentSchema = `{
  "type": "object",
  "required": ["content"],
  "properties": {
    "content": {"type": "string", "minLength": 1},
    "imagePrompt": {"type": "string"}
  }
}`

const quizSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "id": {"type": ["integer", "string"]},
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "items": {"type": "string"}},
          "correctAnswer": {"type": "integer", "minimum": 0},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`

var (
	structureValidator      = mustSchema("structure", structureSchema)
	sectionContentValidator = mustSchema("section content", sectionContentSchema)
	quizValidator           = mustSchema("quiz", quizSchema)
)

func mustSchema(name, src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return s
}

// cleanJSON strips the Markdown code fences models like to wrap JSON in.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// decode validates raw against schema and unmarshals it into v.
func decode(schema *gojsonschema.Schema, raw string, v any) error {
	data := cleanJSON(raw)
	if data == "" {
		return errors.New("empty response")
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(data))
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// quizEnvelope accepts a bare question array as well as {"questions": [...]}.
func quizEnvelope(raw string) string {
	data := cleanJSON(raw)
	if strings.HasPrefix(data, "[") {
		return `{"questions":` + data + `}`
	}
	return data
}
