package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/modelcat/modelcat/internal/catalog"
	"github.com/modelcat/modelcat/internal/config"
)

var cfg *config.Config

// LoadConfig loads configuration for all subcommands, optionally
// overriding the operating mode from the command line.
func LoadConfig(path, modeOverride string) error {
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if modeOverride != "" {
		loaded.Catalog.Mode = modeOverride
	}
	cfg = loaded
	return nil
}

func NewModelsCommand(outputJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "models <provider>",
		Short: "List the models a provider currently offers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, ok := catalog.ParseProvider(args[0])
			if !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}

			resolver := catalog.NewResolver(cfg.CatalogSettings(), nil, zap.NewNop())
			models, err := resolver.ListModels(context.Background(), provider)
			if err != nil {
				return err
			}

			if *outputJSON {
				return json.NewEncoder(os.Stdout).Encode(models)
			}
			if len(models) == 0 {
				fmt.Println("no models (missing credential or empty catalog)")
				return nil
			}
			for _, id := range models {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func NewProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported provider identifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			providers := catalog.Providers()
			sort.Slice(providers, func(i, j int) bool {
				return providers[i] < providers[j]
			})
			for _, p := range providers {
				fmt.Println(string(p))
			}
			return nil
		},
	}
}
