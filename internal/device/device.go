package device

import (
	"context"
	"encoding/json"
	"fmt"
)

// Device represents a generic device that can process named actions
type Device interface {
	// Process handles a JSON-encoded action and executes the corresponding operation
	Process(ctx context.Context, actionJSON []byte) (*ActionResponse, error)

	// GetDeviceInfo returns basic information about the device
	GetDeviceInfo() DeviceInfo
}

// DeviceInfo contains basic information about a device
type DeviceInfo struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Model        string   `json:"model"`
	Name         string   `json:"name,omitempty"`
	Address      string   `json:"address"`
	Capabilities []string `json:"capabilities"`
}

// ActionRequest represents a JSON action request
type ActionRequest struct {
	Action     string                 `json:"action"`     // action name
	Parameters map[string]interface{} `json:"parameters"` // optional named parameters
}

// ActionResponse represents the response from processing an action
type ActionResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Failure builds an unsuccessful response
func Failure(format string, args ...interface{}) *ActionResponse {
	return &ActionResponse{
		Success: false,
		Error:   fmt.Sprintf(format, args...),
	}
}

// ParseActionRequest parses JSON input into ActionRequest
func ParseActionRequest(actionJSON []byte) (*ActionRequest, error) {
	var request ActionRequest
	if err := json.Unmarshal(actionJSON, &request); err != nil {
		return nil, fmt.Errorf("failed to parse action request: %w", err)
	}

	if request.Action == "" {
		return nil, fmt.Errorf("action is required")
	}

	return &request, nil
}

// CreateActionJSON encodes an action request
func CreateActionJSON(action string, parameters map[string]interface{}) ([]byte, error) {
	return json.Marshal(ActionRequest{
		Action:     action,
		Parameters: parameters,
	})
}
