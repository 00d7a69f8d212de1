package extract

import "github.com/xeipuuv/gojsonschema"

// payloadSchema is the shape contract for assistant payloads. Everything the
// merger consumes is checked here once, at the boundary, instead of through
// scattered defensive checks downstream.
const payloadSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string"},
		"workflow_complete": {"type": "boolean"},
		"nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id"],
				"properties": {
					"id": {"type": "string"},
					"type": {"type": "string"},
					"name": {"type": "string"},
					"status": {"type": "string"},
					"required_fields": {"type": "array", "items": {"type": "string"}},
					"provided_fields": {"type": "array", "items": {"type": "string"}},
					"missing_fields": {"type": "array", "items": {"type": "string"}},
					"config": {"type": "object"}
				}
			}
		},
		"connections": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id"],
				"properties": {
					"id": {"type": "string"},
					"source": {"type": "string"},
					"target": {"type": "string"},
					"status": {"type": "string"}
				}
			}
		}
	}
}`

var payloadSchemaLoader = gojsonschema.NewStringLoader(payloadSchema)
