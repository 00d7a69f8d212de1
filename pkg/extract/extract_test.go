package extract

import (
	"testing"

	"github.com/pipewise/pipewise/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "plain json passes through",
			raw:      `{"message": "hello"}`,
			expected: `{"message": "hello"}`,
		},
		{
			name:     "fenced code block",
			raw:      "Here you go:\n```json\n{\"message\": \"hi\"}\n```\nLet me know!",
			expected: `{"message": "hi"}`,
		},
		{
			name:     "fence without language tag",
			raw:      "```\n{\"message\": \"hi\"}\n```",
			expected: `{"message": "hi"}`,
		},
		{
			name:     "prose around braces",
			raw:      `Sure! {"message": "hi"} Hope that helps.`,
			expected: `{"message": "hi"}`,
		},
		{
			name:     "no braces at all",
			raw:      "  just some prose  ",
			expected: "just some prose",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Extract(tc.raw))
		})
	}
}

func TestRepair(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trailing comma in object",
			input:    `{"message": "hi",}`,
			expected: `{"message": "hi"}`,
		},
		{
			name:     "trailing comma in array",
			input:    `{"fields": ["a", "b",]}`,
			expected: `{"fields": ["a", "b"]}`,
		},
		{
			name:     "bare scalar value gets quoted",
			input:    `{"status": partial}`,
			expected: `{"status": "partial"}`,
		},
		{
			name:     "json literals stay bare",
			input:    `{"workflow_complete": false, "x": null}`,
			expected: `{"workflow_complete": false, "x": null}`,
		},
		{
			name:     "valid document unchanged",
			input:    `{"message": "all good"}`,
			expected: `{"message": "all good"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Repair(tc.input))
		})
	}
}

func TestParse_RequiresMessage(t *testing.T) {
	_, err := Parse(`{"nodes": []}`)
	require.Error(t, err)
	assert.True(t, IsInvalidPayload(err))
}

func TestParse_RejectsWrongShapes(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "message not a string", input: `{"message": 42}`},
		{name: "nodes not an array", input: `{"message": "hi", "nodes": {"id": "source-node"}}`},
		{name: "node without id", input: `{"message": "hi", "nodes": [{"name": "Source"}]}`},
		{name: "not json at all", input: `not json`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			assert.True(t, IsInvalidPayload(err))
		})
	}
}

func TestParse_ValidPayload(t *testing.T) {
	payload, err := Parse(`{
		"message": "What is your store URL?",
		"nodes": [{"id": "source-node", "provided_fields": [], "missing_fields": ["store_url", "api_key", "api_secret"]}],
		"workflow_complete": false
	}`)
	require.NoError(t, err)

	assert.Equal(t, "What is your store URL?", payload.Message)
	require.Len(t, payload.Nodes, 1)
	assert.Equal(t, models.SourceNodeID, payload.Nodes[0].ID)
	require.NotNil(t, payload.WorkflowComplete)
	assert.False(t, *payload.WorkflowComplete)
}

func TestDecode_RepairsNearValidOutput(t *testing.T) {
	raw := "Here is the update:\n```json\n{\"message\": \"Got it\", \"nodes\": [{\"id\": \"source-node\",}],}\n```"

	payload, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Got it", payload.Message)
	require.Len(t, payload.Nodes, 1)
}

func TestDecode_PermanentlyInvalidText(t *testing.T) {
	_, err := Decode("I am sorry, I cannot answer that.")
	require.Error(t, err)
	assert.True(t, IsInvalidPayload(err))
}
