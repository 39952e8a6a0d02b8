package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/snapshot"
	"github.com/schemasmith/schemasmith/internal/state"
	"github.com/schemasmith/schemasmith/internal/wizard"
)

var projectKeepSnapshots bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the registry of projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(config.ExpandHome(args[1]))
		if err != nil {
			return fmt.Errorf("resolving project path: %w", err)
		}
		regPath := projectRegistryPath()
		reg, err := state.Load(regPath)
		if err != nil {
			return err
		}
		p := reg.AddProject(args[0], path)
		if err := reg.Save(regPath); err != nil {
			return err
		}
		fmt.Printf("Registered %s at %s (request bodies: %s/%s)\n", args[0], p.Path, p.Request.Store, p.Request.BulkStore)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := state.Load(projectRegistryPath())
		if err != nil {
			return err
		}
		names := reg.Names()
		if len(names) == 0 {
			fmt.Println("No projects registered.")
			return nil
		}
		for _, name := range names {
			p, _ := reg.Project(name)
			line := fmt.Sprintf("  %-20s %s", name, p.Path)
			switch {
			case p.IsNew:
				line += wizard.Dim("  (never generated)")
			case len(p.TablesStatus) > 0:
				line += wizard.Warn(fmt.Sprintf("  (%d pending)", len(p.TablesStatus)))
			}
			fmt.Println(line)
		}
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Unregister a project and delete its snapshots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		regPath := projectRegistryPath()
		reg, err := state.Load(regPath)
		if err != nil {
			return err
		}
		if !reg.RemoveProject(name) {
			return fmt.Errorf("project %q is not registered", name)
		}
		if err := reg.Save(regPath); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", name)

		if projectKeepSnapshots {
			return nil
		}
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Println(wizard.Warn("  snapshots kept: no config to locate the snapshot store"))
			return nil
		}
		ctx := cmd.Context()
		store, err := snapshot.Open(ctx, cfg.Snapshots)
		if err != nil {
			return err
		}
		defer store.Close(ctx)
		if err := store.Delete(ctx, name); err != nil {
			return fmt.Errorf("deleting snapshots: %w", err)
		}
		return nil
	},
}

// projectRegistryPath returns the configured registry, or the default one when
// no config exists yet.
func projectRegistryPath() string {
	if cfg, err := config.Load(cfgFile); err == nil {
		return cfg.Registry
	}
	return config.ExpandHome(state.DefaultPath)
}

func init() {
	projectRemoveCmd.Flags().BoolVar(&projectKeepSnapshots, "keep-snapshots", false, "keep the stored schema snapshots")
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectRemoveCmd)
	rootCmd.AddCommand(projectCmd)
}
