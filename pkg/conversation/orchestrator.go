// Package conversation implements the turn engine: it accepts a user
// message, drives the model, decodes and merges the structured reply and
// persists the updated conversation. Model and parsing failures never
// escape this package as errors; every turn produces a well-formed message.
package conversation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pipewise/pipewise/pkg/eventbus"
	"github.com/pipewise/pipewise/pkg/events"
	"github.com/pipewise/pipewise/pkg/extract"
	"github.com/pipewise/pipewise/pkg/llm"
	"github.com/pipewise/pipewise/pkg/merge"
	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/otelhelper"
	"github.com/pipewise/pipewise/pkg/prompt"
)

// maxCorrectionAttempts bounds the self-correction loop: after the initial
// model call, up to three corrective calls are made before the turn fails.
const maxCorrectionAttempts = 3

// Orchestrator drives one conversation turn end to end.
type Orchestrator struct {
	repository *Repository
	client     llm.Client
	dual       llm.DualGenerator
	prompts    *prompt.Builder
	publisher  eventbus.EventPublisher
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures optional orchestrator behavior.
type Option func(*Orchestrator)

// WithDualGenerator enables the parallel prose+structure mode.
func WithDualGenerator(dual llm.DualGenerator) Option {
	return func(o *Orchestrator) {
		o.dual = dual
	}
}

// WithEventPublisher enables advisory lifecycle events. Publishing failures
// are logged and never affect the turn.
func WithEventPublisher(publisher eventbus.EventPublisher) Option {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

// WithTracer enables per-turn tracing.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

func NewOrchestrator(repository *Repository, client llm.Client, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		repository: repository,
		client:     client,
		prompts:    prompt.NewBuilder(),
		tracer:     noop.NewTracerProvider().Tracer("pipewise"),
		logger:     logger,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// HandleMessage processes one user message against the conversation with
// the given ID, creating the conversation on first contact. The reply is the
// assistant message, followed by status entries for any node or workflow
// that completed this turn. The returned error is non-nil only for storage
// failures; model and decode failures are reported as error-type messages.
func (o *Orchestrator) HandleMessage(ctx context.Context, conversationID, content string) ([]*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return []*models.Message{{
			ID:      uuid.New().String(),
			Role:    models.TurnRoleAssistant,
			Type:    models.MessageTypeError,
			Content: "I didn't receive any text. Please send your answer again.",
		}}, nil
	}

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "conversation.turn",
		attribute.String(otelhelper.ConversationIDKey, conversationID))
	defer span.End()

	conversation, err := o.repository.FetchOrCreate(ctx, conversationID)
	if err != nil {
		otelhelper.SetConversationError(span, err, conversationID)

		return nil, err
	}

	started := time.Now()
	state := conversation.CurrentState()

	if state == nil {
		state = models.NewWorkflowState()
	}

	userTurn := models.ConversationTurn{
		ID:        uuid.New().String(),
		Role:      models.TurnRoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	conversation.Turns = append(conversation.Turns, userTurn)

	o.publish(ctx, conversation.ID, events.TurnStarted{
		BaseEvent: o.baseEvent(events.TurnStartedEvent, conversation.ID),
		TurnID:    userTurn.ID,
	})

	payload, prose, repairs, err := o.generatePayload(ctx, conversation, state, userTurn.ID)
	if err != nil {
		otelhelper.SetConversationError(span, err, conversation.ID)

		o.publish(ctx, conversation.ID, events.TurnFailed{
			BaseEvent: o.baseEvent(events.TurnFailedEvent, conversation.ID),
			TurnID:    userTurn.ID,
			Error:     err.Error(),
		})

		// The user turn is kept so the exchange can resume where it
		// stopped; the state is unchanged.
		if saveErr := o.repository.Save(ctx, conversation); saveErr != nil {
			return nil, saveErr
		}

		return []*models.Message{{
			ID:         uuid.New().String(),
			ResponseTo: userTurn.ID,
			Role:       models.TurnRoleAssistant,
			Type:       models.MessageTypeError,
			Content:    "I couldn't process that just now. Please send your answer again.",
		}}, nil
	}

	span.SetAttributes(attribute.Int(otelhelper.RepairAttemptsKey, repairs))

	wasComplete := state.Complete
	merged := merge.Merge(state, payload)

	o.thought(ctx, conversation.ID, userTurn.ID, "merging", "applying structured update to workflow state")

	replyContent := payload.Message
	if prose != "" {
		replyContent = prose
	}

	assistantTurn := models.ConversationTurn{
		ID:        uuid.New().String(),
		Role:      models.TurnRoleAssistant,
		Content:   replyContent,
		State:     merged,
		CreatedAt: time.Now().UTC(),
	}
	conversation.Turns = append(conversation.Turns, assistantTurn)

	err = o.repository.Save(ctx, conversation)
	if err != nil {
		return nil, err
	}

	o.publish(ctx, conversation.ID, events.TurnCompleted{
		BaseEvent:        o.baseEvent(events.TurnCompletedEvent, conversation.ID),
		TurnID:           assistantTurn.ID,
		WorkflowComplete: merged.Complete,
		RepairAttempts:   repairs,
		DurationMs:       time.Since(started).Milliseconds(),
	})

	if merged.Complete && !wasComplete {
		o.publish(ctx, conversation.ID, events.WorkflowComplete{
			BaseEvent: o.baseEvent(events.WorkflowCompleted, conversation.ID),
		})
	}

	complete := merged.Complete

	reply := []*models.Message{{
		ID:               assistantTurn.ID,
		ResponseTo:       userTurn.ID,
		Role:             models.TurnRoleAssistant,
		Type:             models.MessageTypeMessage,
		Content:          replyContent,
		Nodes:            merged.Nodes,
		Connections:      merged.Connections,
		WorkflowComplete: &complete,
	}}

	return append(reply, o.statusMessages(state, merged, userTurn.ID)...), nil
}

// statusMessages builds one status entry per node that completed this turn,
// plus one for the workflow itself.
func (o *Orchestrator) statusMessages(previous, merged *models.WorkflowState, responseTo string) []*models.Message {
	var statuses []*models.Message

	for _, node := range merged.Nodes {
		if !node.IsComplete() {
			continue
		}

		before := previous.NodeByID(node.ID)
		if before != nil && before.IsComplete() {
			continue
		}

		statuses = append(statuses, &models.Message{
			ID:         uuid.New().String(),
			ResponseTo: responseTo,
			Role:       models.TurnRoleAssistant,
			Type:       models.MessageTypeStatus,
			Content:    node.Name + " is fully configured.",
		})
	}

	if merged.Complete && !previous.Complete {
		statuses = append(statuses, &models.Message{
			ID:         uuid.New().String(),
			ResponseTo: responseTo,
			Role:       models.TurnRoleAssistant,
			Type:       models.MessageTypeStatus,
			Content:    "Pipeline configuration is complete.",
		})
	}

	return statuses
}

// generatePayload runs the model and decodes its reply, retrying with a
// correction message on undecodable output. Returns the decoded payload,
// the prose override from dual mode (empty otherwise) and how many repair
// retries were needed.
func (o *Orchestrator) generatePayload(
	ctx context.Context,
	conversation *models.Conversation,
	state *models.WorkflowState,
	turnID string,
) (*models.AssistantPayload, string, int, error) {
	messages, err := o.prompts.Build(conversation, state)
	if err != nil {
		return nil, "", 0, err
	}

	o.thought(ctx, conversation.ID, turnID, "model", "requesting structured reply from model")

	raw, prose, err := o.callModel(ctx, conversation, state, messages)
	if err != nil {
		return nil, "", 0, err
	}

	var lastErr error

	for attempt := 0; attempt <= maxCorrectionAttempts; attempt++ {
		if attempt > 0 {
			o.thought(ctx, conversation.ID, turnID, "repairing", "model reply was not decodable, requesting correction")

			messages = append(messages,
				llm.ChatMessage{Role: llm.RoleAssistant, Content: raw},
				llm.ChatMessage{Role: llm.RoleUser, Content: prompt.CorrectionContent(raw)},
			)

			raw, err = o.client.Generate(ctx, llm.Request{Messages: messages, Params: llm.StructuredParams})
			if err != nil {
				return nil, "", attempt, err
			}

			// Prose from the first dual call is only trustworthy for the
			// reply it was paired with.
			prose = ""
		}

		payload, decodeErr := extract.Decode(raw)
		if decodeErr == nil {
			return payload, prose, attempt, nil
		}

		lastErr = decodeErr

		o.logger.WarnContext(ctx, "Failed to decode model reply",
			"conversation_id", conversation.ID,
			"attempt", attempt+1,
			"error", decodeErr)
	}

	return nil, "", maxCorrectionAttempts, lastErr
}

// callModel issues the initial generation: the parallel dual call when
// enabled, a single structured call otherwise.
func (o *Orchestrator) callModel(
	ctx context.Context,
	conversation *models.Conversation,
	state *models.WorkflowState,
	messages []llm.ChatMessage,
) (string, string, error) {
	structured := llm.Request{Messages: messages, Params: llm.StructuredParams}

	if o.dual == nil {
		raw, err := o.client.Generate(ctx, structured)

		return raw, "", err
	}

	proseMessages, err := o.prompts.BuildProse(conversation, state)
	if err != nil {
		return "", "", err
	}

	result, err := o.dual.GenerateDual(ctx,
		llm.Request{Messages: proseMessages, Params: llm.ProseParams},
		structured,
	)
	if err != nil {
		return "", "", err
	}

	return result.Structured, result.Prose, nil
}

func (o *Orchestrator) baseEvent(eventType events.EventType, conversationID string) events.BaseEvent {
	return events.BaseEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		Timestamp:      time.Now().UTC(),
		ConversationID: conversationID,
	}
}

func (o *Orchestrator) thought(ctx context.Context, conversationID, turnID, phase, content string) {
	o.publish(ctx, conversationID, events.TurnThought{
		BaseEvent: o.baseEvent(events.TurnThoughtEvent, conversationID),
		TurnID:    turnID,
		Phase:     phase,
		Content:   content,
	})
}

func (o *Orchestrator) publish(ctx context.Context, key string, event eventbus.Event) {
	if o.publisher == nil {
		return
	}

	err := o.publisher.Publish(ctx, key, event)
	if err != nil {
		o.logger.WarnContext(ctx, "Failed to publish conversation event",
			"event_type", event.GetType(),
			"conversation_id", key,
			"error", err)
	}
}
