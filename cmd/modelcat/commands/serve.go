package commands

import (
	"github.com/spf13/cobra"

	"github.com/modelcat/modelcat/internal/logger"
	"github.com/modelcat/modelcat/internal/server"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog API and gateway servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.Initialize(cfg.Logging)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return server.Run(cfg, log)
		},
	}
}
