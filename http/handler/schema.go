package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filemanager/http/server/forward"
)

// Response messages.
const (
	msgUploaded  = "File uploaded successfully"
	msgReplaced  = "File replaced successfully"
	msgKeptBoth  = "File uploaded with unique name (both files kept)"
	msgCancelled = "Upload cancelled by user"
	msgConflict  = "A file with the same name already exists"
	msgDeleted   = "File deleted successfully"
)

type listRequest struct {
	Sort string `json:"sort" query:"sort"`
}

type keyRequest struct {
	Key string `json:"key" params:"key" validate:"required,storage_key"`
}

type searchRequest struct {
	Query *string `json:"q" query:"q" validate:"required"`
	Sort  string  `json:"sort" query:"sort"`
}

type uploadRequest struct {
	File *forward.File `json:"file" file:"file" form:"-" validate:"required"`
}

type resolveConflictRequest struct {
	File        *forward.File `json:"file" file:"file" form:"-" validate:"required"`
	Action      string        `json:"action" form:"action" validate:"required"`
	ExistingKey string        `json:"existingKey" form:"existingKey"`
}

type conflictOptions struct {
	Cancel   string `json:"cancel"`
	Replace  string `json:"replace"`
	KeepBoth string `json:"keepBoth"`
}

// uploadResponse is the body of both upload endpoints. A conflict is answered with 409
// and the conflict fields set; everything else is 200.
type uploadResponse struct {
	Conflict         bool             `json:"conflict,omitempty"`
	Message          string           `json:"message"`
	Key              string           `json:"key,omitempty"`
	DownloadURL      string           `json:"downloadUrl,omitempty"`
	Action           string           `json:"action,omitempty"`
	Cancelled        bool             `json:"cancelled,omitempty"`
	OriginalFilename string           `json:"originalFilename,omitempty"`
	ExistingKey      string           `json:"existingKey,omitempty"`
	Options          *conflictOptions `json:"options,omitempty"`
}

func (r *uploadResponse) StatusCode() int {
	if r.Conflict {
		return fiber.StatusConflict
	}
	return fiber.StatusOK
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Completed bool `json:"completed"`
}

func defaultConflictOptions() *conflictOptions {
	return &conflictOptions{
		Cancel:   "Cancel the upload",
		Replace:  "Replace the existing file",
		KeepBoth: "Keep both files (new file will have a unique name)",
	}
}
