package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// Write payloads are checked against these schemas before decoding, so a
// malformed body is rejected with a clear message and no state change.
const (
	submitSchemaJSON = `{
		"type": "object",
		"required": ["texto"],
		"properties": {
			"texto": {"type": "string"},
			"nombre": {"type": "string"},
			"anonimo": {"type": "boolean"}
		}
	}`

	createUserSchemaJSON = `{
		"type": "object",
		"required": ["codigo"],
		"properties": {
			"nombre": {"type": "string"},
			"codigo": {"type": "string"},
			"rol": {"type": "string", "enum": ["admin", "viewer"]},
			"activo": {"type": "boolean"}
		}
	}`
)

var (
	submitSchema     = mustSchema(submitSchemaJSON)
	createUserSchema = mustSchema(createUserSchemaJSON)
)

func mustSchema(src string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic("api: bad payload schema: " + err.Error())
	}
	return rs
}

func validatePayload(ctx context.Context, schema *jsonschema.Schema, body []byte) error {
	verrs, err := schema.ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	if len(verrs) > 0 {
		return fmt.Errorf("invalid payload: %s", verrs[0].Error())
	}
	return nil
}
