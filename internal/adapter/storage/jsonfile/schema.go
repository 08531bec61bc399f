package jsonfile

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "todolist://schema/todos.json"

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id"],
    "properties": {
      "id": {"type": "integer"},
      "title": {"type": "string"},
      "dueDate": {"type": ["string", "null"]},
      "category": {"type": ["string", "null"]},
      "priority": {"type": ["string", "null"]},
      "isDone": {"type": "boolean"}
    }
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(schemaURL, strings.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return schema, nil
}

// schemaViolation flattens a validation error into its first leaf cause.
func schemaViolation(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}

	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	location := ve.InstanceLocation
	if location == "" {
		location = "/"
	}

	return fmt.Sprintf("%s: %s", location, ve.Message)
}
