// Package events defines event types for conversation turn lifecycle
// notifications. All events here are advisory: losing them never affects
// the correctness of a conversation.
package events

import "time"

type EventType string

// Topic is the single topic conversation events are published on.
const Topic = "pipewise.conversation.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TurnStartedEvent   EventType = "conversation.turn.started"
	TurnThoughtEvent   EventType = "conversation.turn.thought"
	TurnCompletedEvent EventType = "conversation.turn.completed"
	TurnFailedEvent    EventType = "conversation.turn.failed"
	WorkflowCompleted  EventType = "conversation.workflow.completed"
)

type BaseEvent struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversation_id"`
}

type TurnStarted struct {
	BaseEvent

	TurnID string `json:"turn_id"`
}

func (e TurnStarted) GetType() EventType {
	return TurnStartedEvent
}

// TurnThought is a progress notification emitted at each major step of a
// turn (prompt building, model call, parsing, merging).
type TurnThought struct {
	BaseEvent

	TurnID  string `json:"turn_id"`
	Phase   string `json:"phase"`
	Content string `json:"content"`
}

func (e TurnThought) GetType() EventType {
	return TurnThoughtEvent
}

type TurnCompleted struct {
	BaseEvent

	TurnID           string `json:"turn_id"`
	WorkflowComplete bool   `json:"workflow_complete"`
	RepairAttempts   int    `json:"repair_attempts"`
	DurationMs       int64  `json:"duration_ms"`
}

func (e TurnCompleted) GetType() EventType {
	return TurnCompletedEvent
}

type TurnFailed struct {
	BaseEvent

	TurnID string `json:"turn_id"`
	Error  string `json:"error"`
}

func (e TurnFailed) GetType() EventType {
	return TurnFailedEvent
}

// WorkflowComplete is published once when every node of a conversation's
// pipeline reaches complete.
type WorkflowComplete struct {
	BaseEvent
}

func (e WorkflowComplete) GetType() EventType {
	return WorkflowCompleted
}
