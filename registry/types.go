package registry

import (
	"strings"
	"time"

	"github.com/code19m/errx"
)

// Error codes returned by the registry.
const (
	CodeEmptyFile             = "EMPTY_FILE"
	CodeInvalidConflictAction = "INVALID_CONFLICT_ACTION"
	CodeExistingKeyRequired   = "EXISTING_KEY_REQUIRED"
)

// Action is the caller's decision for an upload whose name is already taken.
type Action string

const (
	ActionCancel   Action = "cancel"
	ActionReplace  Action = "replace"
	ActionKeepBoth Action = "keepBoth"
)

// ParseAction parses s case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cancel":
		return ActionCancel, nil
	case "replace":
		return ActionReplace, nil
	case "keepboth":
		return ActionKeepBoth, nil
	default:
		return "", errx.New(
			"invalid action, must be 'cancel', 'replace', or 'keepBoth'",
			errx.WithCode(CodeInvalidConflictAction),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"action": s}),
		)
	}
}

// Upload is one file received from a caller.
type Upload struct {
	Filename    string
	ContentType string
	Body        []byte
}

// FileInfo describes a stored file as shown to callers.
type FileInfo struct {
	Key          string    `json:"key"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	DownloadURL  string    `json:"downloadUrl"`
}

// Conflict describes an existing file with the same name as a new upload.
type Conflict struct {
	OriginalFilename string
	ExistingKey      string
}

// UploadResult is the outcome of UploadFile or ResolveConflict.
//
// When Conflict is set nothing was written and the caller must pick an Action.
// When Cancelled is set nothing was written either.
type UploadResult struct {
	Key         string
	DownloadURL string
	Action      Action
	Cancelled   bool
	Conflict    *Conflict
}

// Download is a file's content.
type Download struct {
	Key         string
	ContentType string
	Body        []byte
}

func errEmptyFile() error {
	return errx.New(
		"please select a file to upload",
		errx.WithCode(CodeEmptyFile),
		errx.WithType(errx.T_Validation),
	)
}

func errExistingKeyRequired() error {
	return errx.New(
		"existing key is required for replace action",
		errx.WithCode(CodeExistingKeyRequired),
		errx.WithType(errx.T_Validation),
	)
}
