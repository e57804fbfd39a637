// Command filemanager serves the file registry over HTTP and runs its maintenance commands.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rise-and-shine/filemanager/cfgloader"
	"github.com/rise-and-shine/filemanager/meta"
	"github.com/rise-and-shine/filemanager/observability/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Errorx(err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "filemanager",
		Short:         "Object store backed file registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "./config", "directory holding ${ENVIRONMENT}.yaml")

	load := func() Config {
		cfg := cfgloader.MustLoad[Config](cfgloader.WithDir(configDir))
		meta.SetServiceInfo(cfg.Service.Name, cfg.Service.Version)
		logger.SetGlobal(cfg.Logger)
		return cfg
	}

	root.AddCommand(newServeCmd(load), newReindexCmd(load))
	return root
}
