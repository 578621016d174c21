package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-proxy/internal/config"
	"github.com/Sternrassler/pokedex-proxy/pkg/logging"
	"github.com/Sternrassler/pokedex-proxy/pkg/pokemon"
)

const (
	lookupDetail    = "detail"
	lookupSpecies   = "species"
	lookupEvolution = "evolution"
)

func newLookupCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "lookup <id>",
		Short: "Print a shaped pokemon record as JSON",
		Long: "Fetches a pokemon through the configured cache and prints the record the API\n" +
			"would return. Useful for warming a shared Redis cache or checking upstream.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging)

			a, err := newPokemonApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			record, err := lookup(cmd.Context(), a.pokemon, kind, args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", lookupDetail, "Record to print: detail, species or evolution")
	return cmd
}

func lookup(ctx context.Context, svc *pokemon.Service, kind, id string) (any, error) {
	switch kind {
	case lookupDetail:
		return svc.GetDetail(ctx, id)
	case lookupSpecies:
		return svc.GetSpecies(ctx, id)
	case lookupEvolution:
		return svc.GetEvolution(ctx, id)
	default:
		return nil, fmt.Errorf("unknown kind %q (want detail, species or evolution)", kind)
	}
}
