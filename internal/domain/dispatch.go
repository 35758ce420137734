package domain

import "github.com/google/uuid"

// DispatchRequest is the body sent to the execution engine.
type DispatchRequest struct {
	WorkflowID uuid.UUID      `json:"workflowId"`
	InputData  map[string]any `json:"inputData,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// DispatchResult is the engine's run handle, passed through verbatim.
type DispatchResult struct {
	ExecutionID string `json:"executionId"`
	Status      string `json:"status"`
	WorkflowID  string `json:"workflowId"`
}

// Identity is the authenticated caller.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}
