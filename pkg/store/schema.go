package store

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchema is the structural contract every persisted receipt record
// must satisfy before it is accepted by Load. Schema violations are
// corruption, not tampering: tampering is what the verifier reports over
// structurally valid records.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["index", "timestamp", "operation", "inputDigest", "outputDigest", "previousDigest", "selfDigest"],
  "additionalProperties": false,
  "properties": {
    "index":          {"type": "integer", "minimum": 0},
    "timestamp":      {"type": "integer"},
    "operation":      {"type": "string"},
    "inputDigest":    {"type": "string", "pattern": "^[0-9a-f]{64}$"},
    "outputDigest":   {"type": "string", "pattern": "^[0-9a-f]{64}$"},
    "previousDigest": {"type": "string", "pattern": "^([0-9a-f]{64}|0)$"},
    "selfDigest":     {"type": "string", "pattern": "^[0-9a-f]{64}$"}
  }
}`

var compiledRecordSchema = jsonschema.MustCompileString("receipt-record.schema.json", recordSchema)
