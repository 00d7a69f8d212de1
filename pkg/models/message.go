package models

// MessageType classifies an entry emitted by the conversation engine.
// Thought and status entries are advisory only and must never be treated as
// authoritative state.
type MessageType string

const (
	MessageTypeMessage MessageType = "message"
	MessageTypeThought MessageType = "thought"
	MessageTypeError   MessageType = "error"
	MessageTypeStatus  MessageType = "status"
)

// Message is the wire shape consumed by UI and transport layers. Field
// values never appear here; only field names and presence cross the
// boundary.
type Message struct {
	ID               string        `json:"id"`
	ResponseTo       string        `json:"response_to,omitempty"`
	Role             TurnRole      `json:"role"`
	Type             MessageType   `json:"type"`
	Content          string        `json:"content"`
	Nodes            []*Node       `json:"nodes,omitempty"`
	Connections      []*Connection `json:"connections,omitempty"`
	WorkflowComplete *bool         `json:"workflow_complete,omitempty"`
}

// AssistantPayload is the structured document expected inside a model
// response. Nodes and connections are partial deltas; the merger
// re-establishes the structural invariants regardless of their content.
type AssistantPayload struct {
	Message          string        `json:"message"`
	Nodes            []*Node       `json:"nodes,omitempty"`
	Connections      []*Connection `json:"connections,omitempty"`
	WorkflowComplete *bool         `json:"workflow_complete,omitempty"`
}
