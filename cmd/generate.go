package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemasmith/schemasmith/internal/emit"
	"github.com/schemasmith/schemasmith/internal/engine"
	"github.com/schemasmith/schemasmith/internal/report"
	"github.com/schemasmith/schemasmith/internal/selection"
	"github.com/schemasmith/schemasmith/internal/wizard"
)

var (
	generateTables      string
	generateArtifacts   string
	generateChanged     bool
	generateInteractive bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate or patch the project's artifacts",
	Long: `Reflect the source schema, rotate the snapshots and create or patch the
artifacts of the selected tables. Files whose generated region can no longer be
found are left untouched and reported as no-match.`,
	Example: `  schemasmith generate
  schemasmith generate --tables 'order_*,users' --artifacts model,factory
  schemasmith generate --changed
  schemasmith generate -i`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, closeStore, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		opts := engine.Options{
			Tables:      selection.SplitPatterns(generateTables),
			Artifacts:   selection.SplitPatterns(generateArtifacts),
			ChangedOnly: generateChanged,
		}
		if generateInteractive {
			opts.Pick = wizard.PickTables
		}

		rep, err := eng.Generate(ctx, opts)
		if errors.Is(err, wizard.ErrCancelled) {
			fmt.Println("Generation cancelled.")
			return nil
		}
		if rep != nil {
			fmt.Println()
			fmt.Print(report.FormatText(rep))
			fmt.Printf("\nReport written to %s\n", eng.ReportPath())
		}
		return err
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateTables, "tables", "", "comma separated table names or globs (default: all tables)")
	generateCmd.Flags().StringVar(&generateArtifacts, "artifacts", "", "comma separated artifacts: "+strings.Join(emit.Names, ", ")+" (default: generate.artifacts)")
	generateCmd.Flags().BoolVar(&generateChanged, "changed", false, "only tables pending as NEW or MODIFIED")
	generateCmd.Flags().BoolVarP(&generateInteractive, "interactive", "i", false, "pick tables interactively")
	rootCmd.AddCommand(generateCmd)
}
