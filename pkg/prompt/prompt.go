// Package prompt assembles the model-facing context for one conversation
// turn: instruction preamble, recent history, serialized workflow state and
// transition-specific guidance.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/pipewise/pipewise/pkg/llm"
	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/progression"
)

// historyWindow bounds how many turns of history are replayed to the model.
const historyWindow = 5

const systemPreamble = `You are a data integration assistant. You help the user configure a
pipeline of exactly three nodes: a source (id "source-node"), a transform
(id "transform-node") and a destination (id "destination-node"), connected
in that order. Each node has a fixed list of required configuration fields.

Always respond with a single JSON object of this shape:

{
  "message": "<your reply to the user>",
  "nodes": [{"id": "...", "provided_fields": [...], "missing_fields": [...]}],
  "connections": [{"id": "...", "source": "...", "target": "..."}],
  "workflow_complete": false
}

Rules:
- When the user supplies a value for the requested field, add that field
  name to the node's provided_fields. Never include field values.
- Accept any textual answer as provisionally correct.
- Never ask for more than one field per reply.
- Never move to a later node while the current node has missing fields.
- Do not wrap the JSON in code fences or add text around it.`

// Builder constructs model requests from conversation history and state.
type Builder struct{}

// NewBuilder creates a prompt builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build assembles the structure-producing request for the current turn.
func (b *Builder) Build(conversation *models.Conversation, state *models.WorkflowState) ([]llm.ChatMessage, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workflow state: %w", err)
	}

	messages := []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: systemPreamble},
	}

	for _, turn := range conversation.RecentTurns(historyWindow) {
		role := llm.RoleUser
		if turn.Role == models.TurnRoleAssistant {
			role = llm.RoleAssistant
		}

		messages = append(messages, llm.ChatMessage{Role: role, Content: turn.Content})
	}

	messages = append(messages, llm.ChatMessage{
		Role:    llm.RoleSystem,
		Content: "Current workflow state:\n" + string(stateJSON),
	})

	next := progression.Next(state)
	transition := progression.Classify(state, next)

	messages = append(messages, llm.ChatMessage{
		Role:    llm.RoleSystem,
		Content: guidance(next, transition),
	})

	return messages, nil
}

// BuildProse assembles the natural-language leg of the parallel dual-model
// mode: same context, but asking only for the conversational reply.
func (b *Builder) BuildProse(conversation *models.Conversation, state *models.WorkflowState) ([]llm.ChatMessage, error) {
	messages, err := b.Build(conversation, state)
	if err != nil {
		return nil, err
	}

	messages = append(messages, llm.ChatMessage{
		Role: llm.RoleSystem,
		Content: "For this reply only: respond with plain conversational text, " +
			"no JSON. Another call produces the structured update.",
	})

	return messages, nil
}

// CorrectionContent is the user-role turn appended when a model response
// could not be parsed, asking the model to correct its own output.
func CorrectionContent(invalid string) string {
	return "Your previous response was not a valid JSON object and could not be " +
		"processed. Respond again with a single valid JSON object in the required " +
		"shape, with no surrounding text.\n\nInvalid response:\n" + invalid
}

func guidance(next *progression.NextField, transition progression.Transition) string {
	if next == nil {
		return "Every field of every node has been provided. Confirm to the user " +
			"that the pipeline configuration is complete and set workflow_complete to true."
	}

	instruction := fmt.Sprintf(
		"Ask only for the %q field of node %q next. Do not request multiple fields. "+
			"Include an example value in your question.",
		next.FieldName, next.NodeID)

	switch transition {
	case progression.TransitionStartOfWorkflow:
		return "This is the first turn. Briefly introduce the three-stage pipeline, " +
			"then start configuring the source node. " + instruction
	case progression.TransitionStartOfNode:
		return "The previous node is complete. Acknowledge that and introduce the " +
			"next node before asking. " + instruction
	case progression.TransitionCompletingNode:
		return "This is the last missing field for this node. Mention that the node " +
			"will be complete after this answer. " + instruction
	default:
		return instruction
	}
}
