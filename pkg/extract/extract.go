// Package extract decodes structured payloads out of free-text model output.
//
// Decoding is a two-stage pipeline: a best-effort textual pre-pass (fence
// stripping, brace trimming, conservative repair) followed by a
// schema-checked deserialization that rejects anything not matching the
// expected payload shape. The repair heuristics never substitute for the
// schema check.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pipewise/pipewise/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidPayload indicates the text could not be decoded into a valid
// assistant payload, even after repair.
var ErrInvalidPayload = errors.New("invalid assistant payload")

// IsInvalidPayload checks if an error indicates an undecodable payload.
func IsInvalidPayload(err error) bool {
	return errors.Is(err, ErrInvalidPayload)
}

var (
	fencedBlockPattern   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	bareScalarPattern    = regexp.MustCompile(`(:\s*)([A-Za-z_][A-Za-z0-9_.\- ]*?)(\s*[,}\]])`)
)

// Extract strips non-JSON wrapping from raw model output: the inner content
// of a fenced code block when one exists, then everything outside the first
// `{` and its last matching `}`.
func Extract(raw string) string {
	text := raw

	if match := fencedBlockPattern.FindStringSubmatch(raw); match != nil {
		text = match[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start == -1 || end == -1 || end < start {
		return strings.TrimSpace(text)
	}

	return text[start : end+1]
}

// Repair applies conservative textual fixes to near-valid JSON: trailing
// commas before a closing bracket are removed and bare scalar values in
// `key: value` pairs are quoted. JSON literals (true, false, null) and
// numbers are left untouched.
func Repair(candidate string) string {
	repaired := trailingCommaPattern.ReplaceAllString(candidate, "$1")

	repaired = bareScalarPattern.ReplaceAllStringFunc(repaired, func(match string) string {
		parts := bareScalarPattern.FindStringSubmatch(match)
		value := parts[2]

		trimmed := strings.TrimSpace(value)
		if trimmed == "true" || trimmed == "false" || trimmed == "null" {
			return match
		}

		return parts[1] + `"` + trimmed + `"` + parts[3]
	})

	return repaired
}

// Parse deserializes a candidate JSON document into an AssistantPayload,
// validating its shape first. The payload must at minimum contain a message
// string; node and connection entries are shape-checked but otherwise
// trusted as authoritative merge input.
func Parse(candidate string) (*models.AssistantPayload, error) {
	result, err := gojsonschema.Validate(payloadSchemaLoader, gojsonschema.NewStringLoader(candidate))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, err.Error())
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(details, "; "))
	}

	var payload models.AssistantPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, err.Error())
	}

	return &payload, nil
}

// Decode runs the full pipeline: extract, parse, and on failure repair and
// parse once more.
func Decode(raw string) (*models.AssistantPayload, error) {
	candidate := Extract(raw)

	payload, err := Parse(candidate)
	if err == nil {
		return payload, nil
	}

	return Parse(Repair(candidate))
}
