package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/modelcat/modelcat/cmd/modelcat/commands"
)

var (
	cfgPath    string
	mode       string
	outputJSON bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modelcat",
		Short: "Multi-provider model catalog CLI",
		Long: `Resolves the model catalog of any supported AI provider, either
directly against the provider endpoint (local mode) or through a
modelcat gateway (proxy mode).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			return commands.LoadConfig(cfgPath, mode)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "override operating mode (local|proxy)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(commands.NewModelsCommand(&outputJSON))
	rootCmd.AddCommand(commands.NewProvidersCommand())
	rootCmd.AddCommand(commands.NewServeCommand())

	return rootCmd
}
