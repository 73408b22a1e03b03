// Package cli implements the idgen command line: mint, validate and parse
// ids locally without running the service.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weiawesome/wes-io-live/idgen/internal/generator"
)

// BuildFunc creates the registry the commands operate on. It runs once,
// before the first subcommand.
type BuildFunc func(logLevel string) (*generator.Registry, error)

// NewRootCommand creates the idgen command tree.
func NewRootCommand(build BuildFunc) *cobra.Command {
	var reg *generator.Registry

	rootCmd := &cobra.Command{
		Use:           "idgen",
		Short:         "Time-ordered id generator CLI",
		Long:          "idgen mints, validates and parses snowflake, ULID, text and other ids using the service configuration.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			r, err := build(logLevel)
			if err != nil {
				return fmt.Errorf("failed to create generators: %w", err)
			}
			reg = r
			return nil
		},
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug|info|warn|error")

	// types
	typesCmd := &cobra.Command{
		Use:   "types",
		Short: "List id types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range reg.Types() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	rootCmd.AddCommand(typesCmd)

	// gen
	genCmd := &cobra.Command{
		Use:     "gen TYPE",
		Short:   "Generate ids, one per line",
		Aliases: []string{"generate"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			if count < 1 {
				return fmt.Errorf("invalid --count %d; must be at least 1", count)
			}
			g, err := reg.Get(generator.Type(args[0]))
			if err != nil {
				return err
			}
			ids, err := g.GenerateBatch(count)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	genCmd.Flags().IntP("count", "n", 1, "Number of ids to generate")
	rootCmd.AddCommand(genCmd)

	// validate
	validateCmd := &cobra.Command{
		Use:   "validate TYPE ID",
		Short: "Check that ID is a well-formed id of TYPE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := reg.Get(generator.Type(args[0]))
			if err != nil {
				return err
			}
			if valid, reason := g.Validate(args[1]); !valid {
				return fmt.Errorf("invalid %s: %s", args[0], reason)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	rootCmd.AddCommand(validateCmd)

	// parse
	parseCmd := &cobra.Command{
		Use:   "parse TYPE ID",
		Short: "Print the fields of ID as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := reg.Get(generator.Type(args[0]))
			if err != nil {
				return err
			}
			result, err := g.Parse(args[1])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	rootCmd.AddCommand(parseCmd)

	return rootCmd
}
