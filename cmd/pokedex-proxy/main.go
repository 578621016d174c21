// Command pokedex-proxy serves the Pokédex backend API and offers a few
// maintenance commands sharing the same service stack.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-proxy/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "pokedex-proxy",
		Short:         "Caching PokeAPI proxy with accounts and favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv(config.ConfigPathEnvVar, configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration file (overrides "+config.ConfigPathEnvVar+")")

	root.AddCommand(newServeCmd(), newLookupCmd())
	return root
}
