package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TypeSlideGeneration asks for the slides of a queued job to be generated.
const TypeSlideGeneration = "slide_generation"

// ErrEmptyJobID is returned when a slide generation event names no job.
var ErrEmptyJobID = errors.New("slide generation event requires a job id")

// TaskRequestEvent represents a request to create a background task.
// It contains the necessary information for task creation without
// direct dependencies on the task package.
type TaskRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the task type that should be created
	Type string `json:"type"`

	// Payload contains the task-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates a new TaskRequestEvent with the specified type and payload.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SlideGenerationPayload is the payload of a TypeSlideGeneration event.
type SlideGenerationPayload struct {
	JobID string `json:"job_id"`
}

// NewSlideGenerationEvent builds the event emitted when a job is created.
func NewSlideGenerationEvent(jobID string) (*TaskRequestEvent, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrEmptyJobID
	}
	return NewTaskRequestEvent(TypeSlideGeneration, SlideGenerationPayload{JobID: jobID})
}

// SlideGenerationJobID extracts the job ID from a TypeSlideGeneration event.
func SlideGenerationJobID(event *TaskRequestEvent) (string, error) {
	if event.Type != TypeSlideGeneration {
		return "", fmt.Errorf("unexpected event type %q", event.Type)
	}
	var payload SlideGenerationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if strings.TrimSpace(payload.JobID) == "" {
		return "", ErrEmptyJobID
	}
	return payload.JobID, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *TaskRequestEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	return f(ctx, event)
}
