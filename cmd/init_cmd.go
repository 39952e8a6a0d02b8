package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/state"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walk through prompts to create a Schemasmith configuration file at ~/.schemasmith/schemasmith.yaml and register the project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("Schemasmith Configuration Setup")
		fmt.Println("===============================")
		fmt.Println()

		fmt.Println("Project")
		fmt.Println("-------")
		cwd, _ := os.Getwd()
		root, err := filepath.Abs(config.ExpandHome(prompt(reader, "Laravel project root", cwd)))
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		name := prompt(reader, "Project name", filepath.Base(root))
		fmt.Println()

		cfg := &config.Config{
			Version: config.CurrentVersion,
			Project: config.ProjectConfig{Name: name, Root: root},
		}

		fmt.Println("Source Database")
		fmt.Println("---------------")
		_, statErr := os.Stat(filepath.Join(root, ".env"))
		useEnv := statErr == nil && strings.HasPrefix(strings.ToLower(prompt(reader, "Read connection from the project's .env (y/n)", "y")), "y")
		if useEnv {
			cfg.Source.FromEnv = true
		} else {
			dbType := prompt(reader, "Database type (mysql/postgresql)", "mysql")
			host := prompt(reader, "Host", "127.0.0.1")
			portStr := prompt(reader, "Port", defaultPort(dbType))
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return fmt.Errorf("invalid port: %s", portStr)
			}
			cfg.Source = config.SourceConfig{
				Type:     dbType,
				Host:     host,
				Port:     port,
				Database: prompt(reader, "Database name", name),
				Username: prompt(reader, "Username", "root"),
				Password: prompt(reader, "Password (or ${ENV:NAME}, ${VAULT:path#key}, ${AWS_SM:secret})", ""),
			}
			if dbType == "postgresql" {
				cfg.Source.Schema = prompt(reader, "Schema", "public")
			}
		}
		fmt.Println()

		fmt.Println("Snapshots")
		fmt.Println("---------")
		cfg.Snapshots.Store = prompt(reader, "Snapshot store (file/mongodb/s3)", "file")
		switch cfg.Snapshots.Store {
		case "mongodb":
			cfg.Snapshots.MongoURI = prompt(reader, "MongoDB connection string", "mongodb://localhost:27017")
		case "s3":
			cfg.Snapshots.S3Bucket = prompt(reader, "S3 bucket", "")
			cfg.Snapshots.S3Prefix = prompt(reader, "S3 key prefix", "schemasmith")
			cfg.Snapshots.AWSRegion = prompt(reader, "AWS region", "us-east-1")
		}
		fmt.Println()

		cfgPath := configPath()
		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Config written to %s\n", cfgPath)

		regPath := config.ExpandHome(state.DefaultPath)
		reg, err := state.Load(regPath)
		if err != nil {
			return err
		}
		reg.AddProject(name, root)
		if err := reg.Save(regPath); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  schemasmith discover   Reflect the source database schema")
		fmt.Println("  schemasmith generate   Generate the project's artifacts")
		fmt.Println("  schemasmith status     Show tables pending regeneration")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func defaultPort(dbType string) string {
	switch dbType {
	case "postgresql":
		return "5432"
	default:
		return "3306"
	}
}
