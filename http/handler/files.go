package handler

import (
	"context"
	"net/url"
	"strings"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filemanager/filestore"
	"github.com/rise-and-shine/filemanager/http/server/forward"
	"github.com/rise-and-shine/filemanager/meta"
	"github.com/rise-and-shine/filemanager/registry"
	"github.com/rise-and-shine/filemanager/val"
)

type listFiles struct{ reg *registry.Registry }

func (listFiles) OperationID() string { return "list_files" }

func (uc listFiles) Execute(ctx context.Context, in *listRequest) ([]registry.FileInfo, error) {
	files, err := uc.reg.ListFiles(ctx)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	registry.SortFiles(files, in.Sort)
	return files, nil
}

type searchFiles struct{ reg *registry.Registry }

func (searchFiles) OperationID() string { return "search_files" }

func (uc searchFiles) Execute(ctx context.Context, in *searchRequest) ([]registry.FileInfo, error) {
	files, err := uc.reg.SearchFiles(ctx, *in.Query)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	registry.SortFiles(files, in.Sort)
	return files, nil
}

type uploadFile struct{ reg *registry.Registry }

func (uploadFile) OperationID() string { return "upload_file" }

func (uc uploadFile) Execute(ctx context.Context, in *uploadRequest) (*uploadResponse, error) {
	res, err := uc.reg.UploadFile(ctx, toUpload(in.File))
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if res.Conflict != nil {
		return &uploadResponse{
			Conflict:         true,
			Message:          msgConflict,
			OriginalFilename: res.Conflict.OriginalFilename,
			ExistingKey:      res.Conflict.ExistingKey,
			Options:          defaultConflictOptions(),
		}, nil
	}

	return &uploadResponse{
		Message:     msgUploaded,
		Key:         res.Key,
		DownloadURL: res.DownloadURL,
	}, nil
}

type resolveConflict struct{ reg *registry.Registry }

func (resolveConflict) OperationID() string { return "resolve_upload_conflict" }

func (uc resolveConflict) Execute(ctx context.Context, in *resolveConflictRequest) (*uploadResponse, error) {
	res, err := uc.reg.ResolveConflict(ctx, toUpload(in.File), in.Action, in.ExistingKey)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if res.Cancelled {
		return &uploadResponse{Message: msgCancelled, Cancelled: true}, nil
	}

	msg := msgKeptBoth
	if res.Action == registry.ActionReplace {
		msg = msgReplaced
	}
	return &uploadResponse{
		Message:     msg,
		Key:         res.Key,
		DownloadURL: res.DownloadURL,
		Action:      in.Action,
	}, nil
}

type deleteFile struct{ reg *registry.Registry }

func (deleteFile) OperationID() string { return "delete_file" }

func (uc deleteFile) Execute(ctx context.Context, in *keyRequest) (*messageResponse, error) {
	deleted, err := uc.reg.DeleteFile(ctx, in.Key)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if !deleted {
		return nil, filestore.NotFound(in.Key)
	}
	return &messageResponse{Message: msgDeleted}, nil
}

type uploadStatus struct{ reg *registry.Registry }

func (uploadStatus) OperationID() string { return "get_upload_status" }

func (uc uploadStatus) Execute(_ context.Context, in *keyRequest) (*statusResponse, error) {
	return &statusResponse{Completed: uc.reg.GetUploadStatus(in.Key)}, nil
}

// download streams raw bytes rather than JSON, so it is a plain handler.
func (h *Handler) download(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil || !val.IsStorageKey(key) {
		return errx.New(
			"invalid key",
			errx.WithCode(val.CodeValidationFailed),
			errx.WithType(errx.T_Validation),
			errx.WithFields(errx.M{"key": "Must be a valid storage key"}),
		)
	}

	ctx := meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
		meta.OperationID: "download_file",
	})
	c.SetUserContext(ctx)

	dl, err := h.reg.DownloadFile(ctx, key)
	if err != nil {
		return errx.Wrap(err)
	}

	c.Set(fiber.HeaderContentType, dl.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+strings.ReplaceAll(key, `"`, `\"`)+`"`)
	return c.Send(dl.Body)
}

func toUpload(f *forward.File) registry.Upload {
	return registry.Upload{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Body:        f.Body,
	}
}
