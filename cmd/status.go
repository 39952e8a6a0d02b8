package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/emit"
	"github.com/schemasmith/schemasmith/internal/report"
	"github.com/schemasmith/schemasmith/internal/state"
	"github.com/schemasmith/schemasmith/internal/wizard"
)

var statusProject string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tables whose artifacts are pending regeneration",
	Long: `List the tables of the project classified NEW or MODIFIED since their
artifacts were last generated, and summarize the last generation report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, reg, project, err := loadRegistry()
		if err != nil {
			return err
		}
		p, ok := reg.Project(project)
		if !ok {
			return fmt.Errorf("project %q is not registered; run `schemasmith generate` or `schemasmith project add`", project)
		}

		header := fmt.Sprintf("Project %s", project)
		if p.IsNew {
			header += " (never generated)"
		}
		fmt.Println(wizard.Title(header))
		fmt.Println(wizard.Dim("  " + p.Path))
		fmt.Println()

		if len(p.TablesStatus) == 0 {
			fmt.Println("  All artifacts are up to date.")
		} else {
			tables := make([]string, 0, len(p.TablesStatus))
			for t := range p.TablesStatus {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			fmt.Printf("  Pending tables (%d):\n", len(tables))
			for _, t := range tables {
				fmt.Printf("    %s %s\n", wizard.Status(p.TablesStatus[t], 9), t)
			}
		}

		if p.Postman.Collection != "" {
			fmt.Printf("\n  API collection: %s\n", p.Postman.Collection)
		}

		rep, err := report.ReadJSON(report.Path(cfg.Logging.Directory, project))
		if err == nil {
			fmt.Printf("\n  Last run %s: %d created, %d updated, %d unchanged, %d no-match\n",
				rep.GeneratedAt.Format("2006-01-02 15:04"),
				rep.Counts[emit.KindCreated], rep.Counts[emit.KindUpdated],
				rep.Counts[emit.KindUnchanged], rep.Counts[emit.KindNoMatch])
			if rep.Fingerprint != "" {
				fmt.Println(wizard.Dim("  Schema fingerprint: " + rep.Fingerprint))
			}
			for _, o := range rep.NoMatches() {
				fmt.Println(wizard.Warn("    untouched: " + o.Path))
			}
		}
		return nil
	},
}

var statusClearCmd = &cobra.Command{
	Use:   "clear <table>...",
	Short: "Mark tables as up to date without regenerating",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, reg, project, err := loadRegistry()
		if err != nil {
			return err
		}
		for _, table := range args {
			if !reg.ClearTableStatus(project, table) {
				return fmt.Errorf("table %q is not pending in project %q", table, project)
			}
			fmt.Printf("Cleared %s\n", table)
		}
		return reg.Save(cfg.Registry)
	},
}

// loadRegistry loads the config and registry and resolves the project, which
// --project overrides.
func loadRegistry() (*config.Config, *state.Registry, string, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, "", fmt.Errorf("loading config: %w", err)
	}
	reg, err := state.Load(cfg.Registry)
	if err != nil {
		return nil, nil, "", err
	}
	project := cfg.ProjectName()
	if statusProject != "" {
		project = statusProject
	}
	return cfg, reg, project, nil
}

func init() {
	statusCmd.PersistentFlags().StringVar(&statusProject, "project", "", "registered project (default: the configured project)")
	statusCmd.AddCommand(statusClearCmd)
	rootCmd.AddCommand(statusCmd)
}
