package main

import (
	"context"

	"github.com/code19m/errx"
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/filemanager/meta"
	"github.com/rise-and-shine/filemanager/observability/logger"
	"github.com/rise-and-shine/filemanager/registry"
	"github.com/rise-and-shine/filemanager/ucdef"
)

const codeNameIndexDisabled = "NAME_INDEX_DISABLED"

type rebuildNameIndexInput struct{}

// rebuildNameIndex repopulates the Redis name index from the object store, for example
// after the index was flushed or enabled on a bucket that already holds files.
type rebuildNameIndex struct {
	reg *registry.Registry
}

var _ ucdef.ManualCommand[*rebuildNameIndexInput] = rebuildNameIndex{}

func (rebuildNameIndex) OperationID() string { return "rebuild_name_index" }

func (uc rebuildNameIndex) Execute(ctx context.Context, _ *rebuildNameIndexInput) error {
	n, err := uc.reg.RebuildIndex(ctx)
	if err != nil {
		return errx.Wrap(err)
	}
	logger.Named("reindex").WithContext(ctx).With("files", n).Info("name index rebuilt")
	return nil
}

func newReindexCmd(load func() Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the original name index from the object store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := load()
			if !cfg.NameIndex.Enabled {
				return errx.New("name index is disabled", errx.WithCode(codeNameIndexDisabled))
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return errx.Wrap(err)
			}
			defer a.close()

			return runManual(cmd.Context(), rebuildNameIndex{reg: a.registry}, &rebuildNameIndexInput{})
		},
	}
}

// runManual executes a manual command with its operation id in the context.
func runManual[I any](ctx context.Context, uc ucdef.ManualCommand[I], in I) error {
	ctx = meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{
		meta.OperationID: uc.OperationID(),
		meta.ActorType:   "operator",
	})
	return errx.Wrap(uc.Execute(ctx, in))
}
