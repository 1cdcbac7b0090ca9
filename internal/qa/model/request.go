package model

import (
	"encoding/json"
	"time"
)

// QueryRequest is the single inbound operation of the service.
type QueryRequest struct {
	ThreadID string `json:"thread_id"`
	Prompt   string `json:"prompt"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

// QueryResponse is the outward-facing result. Finalization always produces
// one; there is no path that leaves it unset.
type QueryResponse struct {
	SessionID           string            `json:"session_id"`
	Response            string            `json:"response"`
	ExtractedEntities   []Entity          `json:"extracted_entities"`
	RelevantDocuments   []DocumentSummary `json:"relevant_documents"`
	Citations           []Citation        `json:"citations"`
	ConfidenceLevel     ConfidenceLevel   `json:"confidence_level"`
	HasCompleteAnswer   bool              `json:"has_complete_answer"`
	FollowUpSuggestions []string          `json:"follow_up_suggestions"`
}

// StreamEventType enumerates the typed events emitted on a streaming
// transport while a request is processed.
type StreamEventType string

const (
	EventStatus     StreamEventType = "status"
	EventChat       StreamEventType = "chat"
	EventCompletion StreamEventType = "completion"
	EventError      StreamEventType = "error"
)

// StreamEvent is one intermediate progress event. Data carries a small JSON
// payload specific to the event type.
type StreamEvent struct {
	Type      StreamEventType `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// EventSink receives stream events emitted during pipeline execution.
// Implementations must serialise concurrent writers; events may be emitted
// from more than one point in the pipeline.
type EventSink interface {
	Emit(event StreamEvent)
}

// NewStatusEvent builds a status event with a human-readable message.
func NewStatusEvent(message string) StreamEvent {
	data, _ := json.Marshal(map[string]string{"message": message})
	return StreamEvent{Type: EventStatus, Data: data, Timestamp: time.Now().UTC()}
}

// NewChatEvent builds a chat event carrying partial answer text.
func NewChatEvent(text string) StreamEvent {
	data, _ := json.Marshal(map[string]string{"text": text})
	return StreamEvent{Type: EventChat, Data: data, Timestamp: time.Now().UTC()}
}

// NewCompletionEvent builds the terminal event carrying the full response.
func NewCompletionEvent(resp *QueryResponse) StreamEvent {
	data, _ := json.Marshal(resp)
	return StreamEvent{Type: EventCompletion, Data: data, Timestamp: time.Now().UTC()}
}

// NewErrorEvent builds an error event with a user-safe message.
func NewErrorEvent(message string) StreamEvent {
	data, _ := json.Marshal(map[string]string{"message": message})
	return StreamEvent{Type: EventError, Data: data, Timestamp: time.Now().UTC()}
}
