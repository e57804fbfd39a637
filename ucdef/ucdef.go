// Package ucdef defines the use case shapes the transports forward to.
package ucdef

import "context"

// Use case types.
const (
	TypeUserAction    = "user_action"
	TypeManualCommand = "manual_command"
)

// UserAction represents a synchronous operation triggered by an HTTP request.
// The caller waits for the result and errors are returned to it as the response.
//
// Type parameters:
//   - I: Input data type (decoded request, a pointer to a struct)
//   - O: Output data type (response body)
//
// Examples: UploadFile, ListFiles, DeleteFile
type UserAction[I, O any] interface {
	// OperationID returns a unique identifier for the use case.
	OperationID() string

	// Execute executes the use case.
	Execute(ctx context.Context, in I) (O, error)
}

// ManualCommand represents an administrative operation run by an operator from the CLI.
// Success or failure is reported through the error and logs only.
//
// Examples: RebuildNameIndex
type ManualCommand[I any] interface {
	// OperationID returns a unique identifier for the use case.
	OperationID() string

	// Execute executes the manual command.
	Execute(ctx context.Context, in I) error
}
