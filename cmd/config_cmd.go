package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemasmith/schemasmith/internal/action"
	"github.com/schemasmith/schemasmith/internal/collection"
	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/emit"
	"github.com/schemasmith/schemasmith/internal/typemap"
	"github.com/schemasmith/schemasmith/internal/wizard"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and validate the Schemasmith configuration and type mapping.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  Project:\n")
		fmt.Printf("    Name:           %s\n", cfg.ProjectName())
		fmt.Printf("    Root:           %s\n", cfg.Project.Root)
		if cfg.Project.Templates != "" {
			fmt.Printf("    Templates:      %s\n", cfg.Project.Templates)
		}
		fmt.Println()
		fmt.Printf("  Source:\n")
		fmt.Printf("    Type:           %s\n", cfg.Source.Type)
		fmt.Printf("    Host:           %s\n", cfg.Source.Host)
		fmt.Printf("    Port:           %d\n", cfg.Source.Port)
		fmt.Printf("    Database:       %s\n", cfg.Source.Database)
		fmt.Printf("    Username:       %s\n", cfg.Source.Username)
		fmt.Printf("    Password:       %s\n", maskSecret(cfg.Source.Password))
		fmt.Println()
		fmt.Printf("  Snapshots:        %s", cfg.Snapshots.Store)
		switch cfg.Snapshots.Store {
		case "mongodb":
			fmt.Printf(" (%s/%s)\n", maskSecret(cfg.Snapshots.MongoURI), cfg.Snapshots.MongoDatabase)
		case "s3":
			fmt.Printf(" (s3://%s/%s)\n", cfg.Snapshots.S3Bucket, cfg.Snapshots.S3Prefix)
		default:
			fmt.Printf(" (%s)\n", cfg.Snapshots.Directory)
		}
		fmt.Printf("  Artifacts:        %s\n", strings.Join(cfg.Generate.Artifacts, ", "))
		fmt.Printf("  Actions:          %s\n", strings.Join(cfg.Generate.Actions, ", "))
		fmt.Printf("  Ignored tables:   %s\n", strings.Join(cfg.IgnoreTables, ", "))

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}

		var errors []string

		if cfg.Project.Root == "" {
			errors = append(errors, "project.root is required")
		} else if info, err := os.Stat(cfg.Project.Root); err != nil || !info.IsDir() {
			errors = append(errors, "project.root must be an existing directory")
		}
		switch cfg.Source.Type {
		case "mysql", "mariadb", "postgresql":
		default:
			errors = append(errors, fmt.Sprintf("source.type %q is not supported", cfg.Source.Type))
		}
		if cfg.Source.Host == "" {
			errors = append(errors, "source.host is required")
		}
		if cfg.Source.Database == "" {
			errors = append(errors, "source.database is required")
		}
		if cfg.Snapshots.Store == "mongodb" && cfg.Snapshots.MongoURI == "" {
			errors = append(errors, "snapshots.mongo_uri is required for the mongodb store")
		}
		if cfg.Snapshots.Store == "s3" && cfg.Snapshots.S3Bucket == "" {
			errors = append(errors, "snapshots.s3_bucket is required for the s3 store")
		}
		if _, err := emit.Lookup(cfg.Generate.Artifacts); err != nil {
			errors = append(errors, "generate.artifacts: "+err.Error())
		}
		if _, err := action.Parse(cfg.Generate.Actions); err != nil {
			errors = append(errors, "generate.actions: "+err.Error())
		}
		for field, mode := range map[string]string{"store_body": cfg.Generate.StoreBody, "bulk_store_body": cfg.Generate.BulkStoreBody} {
			if _, err := collection.ParseBodyMode(mode); err != nil {
				errors = append(errors, "generate."+field+": "+err.Error())
			}
		}
		if _, err := typemap.Load(cfg.Source.Type, cfg.TypemapFile, cfg.TypemapOverrides); err != nil {
			errors = append(errors, "type mapping: "+err.Error())
		}
		if _, err := emit.LoadTemplates(cfg.Project.Templates); err != nil {
			errors = append(errors, "project.templates: "+err.Error())
		}

		if len(errors) > 0 {
			fmt.Println("Validation errors:")
			for _, e := range errors {
				fmt.Printf("  - %s\n", e)
			}
			return fmt.Errorf("%d validation error(s)", len(errors))
		}

		fmt.Println("Configuration is valid.")
		return nil
	},
}

var configTypeMappingCmd = &cobra.Command{
	Use:   "type-mapping",
	Short: "Show the vendor to canonical type mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		tm, err := typemap.Load(cfg.Source.Type, cfg.TypemapFile, cfg.TypemapOverrides)
		if err != nil {
			return err
		}
		if typeMappingExport != "" {
			if err := tm.WriteYAML(typeMappingExport); err != nil {
				return err
			}
			fmt.Printf("Type mapping written to %s\n", typeMappingExport)
			return nil
		}
		for _, vendor := range tm.SortedTypes() {
			line := fmt.Sprintf("  %-28s %s", vendor, tm.Resolve(vendor))
			if tm.IsOverridden(vendor) {
				line += wizard.Warn("  (override)")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var typeMappingExport string

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func init() {
	configTypeMappingCmd.Flags().StringVar(&typeMappingExport, "export", "", "write the effective mapping to a YAML file usable as typemap_file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configTypeMappingCmd)
	rootCmd.AddCommand(configCmd)
}
