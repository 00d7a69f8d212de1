package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks the span failed and records the error together with the
// given attributes.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

// SetConversationError tags the failure with the conversation it belongs to.
func SetConversationError(span trace.Span, err error, conversationID string) {
	SetError(span, err, attribute.String(ConversationIDKey, conversationID))
}
