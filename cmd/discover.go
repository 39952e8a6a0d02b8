package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemasmith/schemasmith/internal/engine"
	"github.com/schemasmith/schemasmith/internal/snapshot"
	"github.com/schemasmith/schemasmith/internal/wizard"
)

var (
	discoverOutput string
	discoverSync   bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Reflect the source database schema",
	Long: `Connect to the source database and reflect its tables, columns, keys and
inferred relations. The schema is printed as YAML, or written to --output.

With --sync the snapshots are rotated and the changed tables are recorded as
pending, without generating any artifact.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// stdout may carry the schema YAML.
		cfg, logger, err := loadRuntimeTo(os.Stderr)
		if err != nil {
			return err
		}
		var store snapshot.Store
		if discoverSync {
			if store, err = snapshot.Open(ctx, cfg.Snapshots); err != nil {
				return err
			}
			defer store.Close(context.Background())
		}
		eng := engine.New(cfg, logger, store)

		s, err := eng.Reflect(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, s.Summary())

		if discoverSync {
			tracker, err := eng.Sync(ctx, s)
			if err != nil {
				return err
			}
			for _, name := range tracker.Changed() {
				status, _ := tracker.Status(name)
				fmt.Fprintf(os.Stderr, "  %s %s\n", wizard.Status(status, 9), name)
			}
		}

		if discoverOutput == "" {
			data, err := s.ToYAML()
			if err != nil {
				return fmt.Errorf("encoding schema: %w", err)
			}
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := s.WriteYAML(discoverOutput); err != nil {
			return fmt.Errorf("writing schema: %w", err)
		}
		fmt.Fprintf(os.Stderr, "\nSchema written to %s\n", discoverOutput)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverOutput, "output", "o", "", "output path for the schema YAML (default: stdout)")
	discoverCmd.Flags().BoolVar(&discoverSync, "sync", false, "rotate snapshots and record changed tables")
	rootCmd.AddCommand(discoverCmd)
}
